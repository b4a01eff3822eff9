package convo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Defaults for context reduction. The first two turns of a session are the
// fixed system instruction and the synthetic greeting trigger; only the
// last few turns after that are worth a constrained prompt.
const (
	DefaultSeedTurns = 2
	DefaultKeepTurns = 3
)

// Reduce derives the trailing conversational context from a session
// transcript. The first skip turns are dropped unconditionally; remaining
// turns are flattened into primitive messages; tool results and tool-call
// payloads are filtered out; the last keep messages survive, in order.
//
// A history shorter than skip reduces to an empty context rather than
// failing.
func Reduce(history []Turn, skip, keep int) []Message {
	if skip < 0 {
		skip = 0
	}
	if keep < 0 {
		keep = 0
	}
	if len(history) <= skip {
		return []Message{}
	}

	var msgs []Message
	for _, t := range history[skip:] {
		msgs = append(msgs, t.Messages()...)
	}

	filtered := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.IsToolCall() {
			continue
		}
		filtered = append(filtered, m)
	}

	if len(filtered) > keep {
		filtered = filtered[len(filtered)-keep:]
	}
	return filtered
}

// TranscriptJSON serializes messages as pretty-printed JSON for prompt
// inclusion and logging. Non-ASCII characters are preserved literally.
func TranscriptJSON(msgs []Message) (string, error) {
	if msgs == nil {
		msgs = []Message{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(msgs); err != nil {
		return "", fmt.Errorf("convo: failed to serialize transcript: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
