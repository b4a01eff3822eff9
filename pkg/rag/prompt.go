// Package rag answers knowledge-base questions with retrieval-augmented
// generation: keyword search over the talk catalog, a trimmed slice of the
// conversation transcript, and one constrained generation call.
package rag

import (
	"strings"

	"github.com/bradwmorris/worldfair-connect/pkg/knowledge"
)

// NoResultsExcerpt is the knowledge excerpt used when search matches nothing.
// The prompt instructions then steer the model toward "I don't know."
const NoResultsExcerpt = "No relevant talks found."

// instructions is the fixed preamble establishing the restricted answering
// role. The response is spoken aloud, hence the formatting constraints.
const instructions = `You are a helpful assistant designed to answer user questions based solely on the provided knowledge base.

**Instructions:**

1.  **Knowledge Base Only:** Answer questions *exclusively* using the information in the "Knowledge Base" section below. Do not use any outside information.
2.  **Conversation History:** Use the "Conversation History" (ordered oldest to newest) to understand the context of the current question.
3.  **Concise Response:** Respond in 50 words or fewer. The response will be spoken, so avoid symbols, abbreviations, or complex formatting. Use plain, natural language.
4.  **Unknown Answer:** If the answer is not found within the "Knowledge Base," respond with "I don't know." Do not guess or make up an answer.
5. Do not introduce your response. Just provide the answer.
6. You must follow all instructions.`

// Excerpt renders search results as the knowledge excerpt for the prompt,
// one block per record in store order. Empty results yield the sentinel.
func Excerpt(records []knowledge.Record) string {
	if len(records) == 0 {
		return NoResultsExcerpt
	}

	blocks := make([]string, 0, len(records))
	for _, r := range records {
		blocks = append(blocks, "Title: "+r.Title+"\nDescription: "+r.Description)
	}
	return strings.Join(blocks, "\n")
}

// BuildPrompt assembles the single-shot instruction from the fixed
// preamble, the static knowledge asset, the per-question search excerpt,
// and the serialized trailing conversation.
func BuildPrompt(asset, excerpt, historyJSON string) string {
	var b strings.Builder
	b.WriteString("System: ")
	b.WriteString(instructions)
	b.WriteString("\n\n**Knowledge Base:**\n")
	if asset != "" {
		b.WriteString(asset)
		b.WriteString("\n\n")
	}
	b.WriteString(excerpt)
	b.WriteString("\n\nConversation History: ")
	b.WriteString(historyJSON)
	return b.String()
}
