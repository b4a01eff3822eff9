package bundled

import (
	"testing"

	"github.com/bradwmorris/worldfair-connect/pkg/voice"
)

func newTestGemini(t *testing.T) *Gemini {
	t.Helper()
	cfg := voice.DefaultConfig()
	cfg.GoogleAPIKey = "test-key"
	g, err := NewGemini(cfg)
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}
	return g
}

func serverContent(m map[string]any) map[string]any {
	return map[string]any{"serverContent": m}
}

func outputChunk(text string) map[string]any {
	return serverContent(map[string]any{
		"outputTranscription": map[string]any{"text": text},
	})
}

func inputChunk(text string) map[string]any {
	return serverContent(map[string]any{
		"inputTranscription": map[string]any{"text": text},
	})
}

var turnComplete = serverContent(map[string]any{"turnComplete": true})

func TestResponseChunksFinalizeOncePerTurn(t *testing.T) {
	g := newTestGemini(t)

	var finals []string
	partials := 0
	g.OnResponse(func(text string, isFinal bool) {
		if isFinal {
			finals = append(finals, text)
		} else {
			partials++
		}
	})

	g.handleMessage(outputChunk("The keynote "))
	g.handleMessage(outputChunk("starts at "))
	g.handleMessage(outputChunk("nine."))
	g.handleMessage(turnComplete)

	if partials != 3 {
		t.Errorf("expected 3 partial events, got %d", partials)
	}
	if len(finals) != 1 {
		t.Fatalf("expected exactly 1 final response per turn, got %d: %v", len(finals), finals)
	}
	if finals[0] != "The keynote starts at nine." {
		t.Errorf("final response = %q", finals[0])
	}
}

func TestInputChunksFinalizeOncePerTurn(t *testing.T) {
	g := newTestGemini(t)

	var finals []string
	g.OnTranscript(func(text string, isFinal bool) {
		if isFinal {
			finals = append(finals, text)
		}
	})

	g.handleMessage(inputChunk("when is "))
	speechEnd := g.Metrics().SpeechEndTime
	g.handleMessage(inputChunk("the keynote"))
	g.handleMessage(turnComplete)

	if len(finals) != 1 {
		t.Fatalf("expected exactly 1 final transcript per turn, got %d: %v", len(finals), finals)
	}
	if finals[0] != "when is the keynote" {
		t.Errorf("final transcript = %q", finals[0])
	}

	// A later chunk of the same utterance must not reset the turn metrics.
	if !g.Metrics().SpeechEndTime.Equal(speechEnd) {
		t.Error("speech end timestamp reset by a follow-up chunk")
	}
}

func TestInterruptionFlushesPartialResponse(t *testing.T) {
	g := newTestGemini(t)

	var finals []string
	g.OnResponse(func(text string, isFinal bool) {
		if isFinal {
			finals = append(finals, text)
		}
	})

	g.handleMessage(outputChunk("The keynote starts"))
	g.handleMessage(serverContent(map[string]any{"interrupted": true}))

	if len(finals) != 1 || finals[0] != "The keynote starts" {
		t.Fatalf("expected cut-off response finalized on barge-in, got %v", finals)
	}

	// The next turn starts clean.
	g.handleMessage(outputChunk("Sure."))
	g.handleMessage(turnComplete)

	if len(finals) != 2 || finals[1] != "Sure." {
		t.Errorf("expected fresh accumulator after interruption, got %v", finals)
	}
}
