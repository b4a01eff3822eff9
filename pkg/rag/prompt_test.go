package rag

import (
	"strings"
	"testing"

	"github.com/bradwmorris/worldfair-connect/pkg/knowledge"
)

func TestExcerpt(t *testing.T) {
	records := []knowledge.Record{
		{ID: 1, Title: "Opening Keynote", Description: "Starts at 9am"},
		{ID: 2, Title: "Agents in Production", Description: "Panel on deployment"},
	}

	got := Excerpt(records)
	want := "Title: Opening Keynote\nDescription: Starts at 9am\n" +
		"Title: Agents in Production\nDescription: Panel on deployment"
	if got != want {
		t.Errorf("Excerpt = %q, want %q", got, want)
	}
}

func TestExcerptEmpty(t *testing.T) {
	if got := Excerpt(nil); got != NoResultsExcerpt {
		t.Errorf("Excerpt(nil) = %q, want sentinel", got)
	}
	if got := Excerpt([]knowledge.Record{}); got != NoResultsExcerpt {
		t.Errorf("Excerpt(empty) = %q, want sentinel", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Doors open at 8am.", "Title: Opening Keynote\nDescription: Starts at 9am", `[{"role":"user","content":"hi"}]`)

	if !strings.HasPrefix(got, "System: ") {
		t.Errorf("prompt missing preamble prefix:\n%s", got)
	}
	wantOrder := []string{
		"**Knowledge Base:**",
		"Doors open at 8am.",
		"Title: Opening Keynote",
		"Conversation History: ",
		`[{"role":"user","content":"hi"}]`,
	}
	idx := 0
	for _, part := range wantOrder {
		at := strings.Index(got[idx:], part)
		if at < 0 {
			t.Fatalf("prompt missing %q after offset %d:\n%s", part, idx, got)
		}
		idx += at + len(part)
	}
}

func TestBuildPromptNoAsset(t *testing.T) {
	got := BuildPrompt("", NoResultsExcerpt, "[]")
	if !strings.Contains(got, "**Knowledge Base:**\n"+NoResultsExcerpt) {
		t.Errorf("excerpt should directly follow the heading when no asset is set:\n%s", got)
	}
}
