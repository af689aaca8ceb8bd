// Package generator renders the answer prompt and produces answers from it.
package generator

import (
	"fmt"
	"strings"

	"kbqa/internal/domain"
)

// IDontKnow is what the model is told to answer when the context is silent.
const IDontKnow = "I don't know."

const instructions = "Instructions: Answer ONLY using the information provided above. " +
	"If the answer is not in the context, respond with '" + IDontKnow + "' " +
	"Do not add information from outside the context."

// Context labels the passages "Document 1: ...", "Document 2: ..." separated
// by blank lines.
func Context(passages []string) string {
	labelled := make([]string, len(passages))
	for i, p := range passages {
		labelled[i] = fmt.Sprintf("Document %d: %s", i+1, p)
	}
	return strings.Join(labelled, "\n\n")
}

// Render builds the full instruction prompt for a generation model.
func Render(p domain.Prompt) string {
	return "Context information:\n" + Context(p.Passages) +
		"\n\nQuestion: " + p.Question +
		"\n\n" + instructions +
		"\n\nAnswer:"
}
