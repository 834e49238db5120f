package prompt

import (
	"strings"

	"ecomm-product-bot/internal/constant"
	"ecomm-product-bot/pkg/llm"
	"ecomm-product-bot/pkg/store"
)

// ContextualizeMessages asks for a standalone version of question:
// instruction, then history, then the question.
func ContextualizeMessages(history []llm.Message, question string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: constant.ContextualizeQuestionPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	return messages
}

// AnswerMessages stuffs docs into the product-bot system prompt, then appends
// history and the question.
func AnswerMessages(docs []store.Document, history []llm.Message, question string) []llm.Message {
	system := strings.NewReplacer(
		constant.ContextPlaceholder, FormatDocuments(docs),
		constant.QuestionPlaceholder, question,
	).Replace(constant.ProductBotTemplate)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	return messages
}

// FormatDocuments renders each review with its product title.
func FormatDocuments(docs []store.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		var b strings.Builder
		if name := d.ProductName(); name != "" {
			b.WriteString("Product: ")
			b.WriteString(name)
			b.WriteString("\n")
		}
		b.WriteString("Review: ")
		b.WriteString(d.Content)
		parts = append(parts, b.String())
	}
	return strings.Join(parts, constant.DocumentSeparator)
}
