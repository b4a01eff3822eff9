package convo

import (
	"strings"
	"testing"
)

func seededHistory(extra ...Turn) []Turn {
	turns := []Turn{
		{Role: RoleSystem, Content: "You are a helpful assistant."},
		{Role: RoleUser, Content: "Greet the user."},
	}
	return append(turns, extra...)
}

func TestReduceSkipsSeedTurns(t *testing.T) {
	history := seededHistory(
		Turn{Role: RoleAssistant, Content: "Hello there!"},
	)

	msgs := Reduce(history, DefaultSeedTurns, DefaultKeepTurns)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Content != "Hello there!" {
		t.Errorf("unexpected message: %+v", msgs[0])
	}
}

func TestReduceSeedOnlyHistory(t *testing.T) {
	msgs := Reduce(seededHistory(), DefaultSeedTurns, DefaultKeepTurns)
	if len(msgs) != 0 {
		t.Errorf("seed-only history should reduce to empty, got %d messages", len(msgs))
	}
}

func TestReduceShortHistory(t *testing.T) {
	// Histories shorter than the skip count reduce to empty, never error.
	history := []Turn{{Role: RoleSystem, Content: "prompt"}}
	msgs := Reduce(history, DefaultSeedTurns, DefaultKeepTurns)
	if len(msgs) != 0 {
		t.Errorf("expected empty context, got %d messages", len(msgs))
	}
}

func TestReduceFiltersToolTurns(t *testing.T) {
	history := seededHistory(
		Turn{Role: RoleUser, Content: "When is the keynote?"},
		Turn{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Name: "query_knowledge_base"}}},
		Turn{Role: RoleTool, Content: "The keynote starts at 9am.", ToolCallID: "1"},
		Turn{Role: RoleAssistant, Content: "The keynote starts at nine."},
	)

	msgs := Reduce(history, DefaultSeedTurns, DefaultKeepTurns)
	for _, m := range msgs {
		if m.Role == RoleTool {
			t.Errorf("tool turn leaked into context: %+v", m)
		}
		if len(m.ToolCalls) > 0 {
			t.Errorf("tool-call payload leaked into context: %+v", m)
		}
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestReduceKeepsLastThree(t *testing.T) {
	history := seededHistory(
		Turn{Role: RoleUser, Content: "one"},
		Turn{Role: RoleAssistant, Content: "two"},
		Turn{Role: RoleUser, Content: "three"},
		Turn{Role: RoleAssistant, Content: "four"},
		Turn{Role: RoleUser, Content: "five"},
	)

	msgs := Reduce(history, DefaultSeedTurns, DefaultKeepTurns)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	want := []string{"three", "four", "five"}
	for i, m := range msgs {
		if m.Content != want[i] {
			t.Errorf("message %d = %q, want %q", i, m.Content, want[i])
		}
	}
}

func TestReduceFlattensBundledTurns(t *testing.T) {
	// A turn bundling assistant text and a tool call expands into two
	// messages; the tool-call half is then filtered out.
	history := seededHistory(
		Turn{
			Role:      RoleAssistant,
			Content:   "Let me check.",
			ToolCalls: []ToolCall{{ID: "1", Name: "query_knowledge_base"}},
		},
	)

	msgs := Reduce(history, DefaultSeedTurns, DefaultKeepTurns)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Content != "Let me check." {
		t.Errorf("unexpected message: %+v", msgs[0])
	}
}

func TestTranscriptJSON(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "When is the keynote?"},
		{Role: RoleAssistant, Content: "At nine."},
	}

	got, err := TranscriptJSON(msgs)
	if err != nil {
		t.Fatalf("TranscriptJSON failed: %v", err)
	}

	if !strings.Contains(got, `"role": "user"`) {
		t.Errorf("expected pretty-printed role field, got:\n%s", got)
	}
	if strings.Contains(got, "tool_calls") {
		t.Errorf("tool_calls should be omitted for plain messages:\n%s", got)
	}
}

func TestTranscriptJSONPreservesNonASCII(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: "Où est la salle? 日本語"}}

	got, err := TranscriptJSON(msgs)
	if err != nil {
		t.Fatalf("TranscriptJSON failed: %v", err)
	}
	if !strings.Contains(got, "Où est la salle? 日本語") {
		t.Errorf("non-ASCII content was escaped:\n%s", got)
	}
}

func TestTranscriptJSONEmpty(t *testing.T) {
	got, err := TranscriptJSON(nil)
	if err != nil {
		t.Fatalf("TranscriptJSON failed: %v", err)
	}
	if got != "[]" {
		t.Errorf("empty context should serialize as [], got %q", got)
	}
}
