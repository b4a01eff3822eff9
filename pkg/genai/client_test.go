package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  The keynote is at 9am.\n"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	got, err := c.Generate(context.Background(), RAGModel, "when is the keynote?", Options{Temperature: 0.1, MaxOutputTokens: 64})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "The keynote is at 9am." {
		t.Errorf("Generate = %q, want trimmed text", got)
	}

	if want := "/models/" + RAGModel + ":generateContent"; gotPath != want {
		t.Errorf("path = %s, want %s", gotPath, want)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %s, want test-key", gotKey)
	}

	genCfg, ok := gotBody["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("request missing generationConfig: %v", gotBody)
	}
	if genCfg["temperature"] != 0.1 {
		t.Errorf("temperature = %v, want 0.1", genCfg["temperature"])
	}
	if genCfg["maxOutputTokens"] != float64(64) {
		t.Errorf("maxOutputTokens = %v, want 64", genCfg["maxOutputTokens"])
	}

	contents, ok := gotBody["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("request contents = %v", gotBody["contents"])
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid","code":403}}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key").WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), RAGModel, "hi", Options{})
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestGenerateErrorEnvelope(t *testing.T) {
	// Some failures come back with 200 and an error body.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model is overloaded","code":503}}`))
	}))
	defer srv.Close()

	c := NewClient("key").WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), RAGModel, "hi", Options{})
	if err == nil || !strings.Contains(err.Error(), "model is overloaded") {
		t.Errorf("error = %v, want envelope message", err)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient("key").WithBaseURL(srv.URL)
	if _, err := c.Generate(context.Background(), RAGModel, "hi", Options{}); err == nil {
		t.Error("expected error for empty candidates")
	}
}

func TestGenerateMissingKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Generate(context.Background(), RAGModel, "hi", Options{}); err == nil {
		t.Error("expected error when API key is unset")
	}
}
