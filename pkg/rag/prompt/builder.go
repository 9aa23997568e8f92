package prompt

import (
	"fmt"
	"strings"

	"ai-knowledge-bot/pkg/rag/knowledge"
)

const SystemPrompt = "You are a helpful assistant that answers questions about web pages the user has taught you. " +
	"Use only the reference material you are given and the earlier conversation."

// ContextualBuilder assembles the retrieval prompt for a single question.
type ContextualBuilder struct {
	chunks   []knowledge.ScoredChunk
	query    string
	language string
}

func NewContextualBuilder(chunks []knowledge.ScoredChunk, query, language string) *ContextualBuilder {
	return &ContextualBuilder{
		chunks:   chunks,
		query:    query,
		language: language,
	}
}

func (b *ContextualBuilder) Build() string {
	var prompt strings.Builder

	b.writeReferenceMaterial(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *ContextualBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	prompt.WriteString("<reference_material>\n")
	if len(b.chunks) == 0 {
		prompt.WriteString("(no relevant material was found)\n")
	}
	for i, c := range b.chunks {
		fmt.Fprintf(prompt, "[%d]", i+1)
		if src := c.Source(); src != "" {
			fmt.Fprintf(prompt, " source: %s", src)
		}
		prompt.WriteString("\n")
		prompt.WriteString(c.Content)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *ContextualBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("Answer the user's question using the reference material above.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *ContextualBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	if b.language != "" {
		fmt.Fprintf(prompt, "- Answer in %s.\n", b.language)
	}
	prompt.WriteString("- Format code or commands in ``` blocks.\n")
	prompt.WriteString("- If the material does not contain the answer, say so honestly.\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *ContextualBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</user_question>")
}
