package message

import (
	"ecomm-product-bot/pkg/llm"
	"ecomm-product-bot/pkg/store"
)

// Factory converts between stored session turns and LLM messages.
type Factory struct{}

// NewFactory creates a new message factory
func NewFactory() *Factory {
	return &Factory{}
}

// ToLLMHistory maps stored turns onto chat messages, in order. Unknown roles
// are sent as user messages.
func (f *Factory) ToLLMHistory(turns []store.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == store.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	return messages
}

// Exchange is the pair of turns recorded for one answered question.
func (f *Factory) Exchange(question, answer string) []store.Turn {
	return []store.Turn{
		{Role: store.RoleUser, Content: question},
		{Role: store.RoleAssistant, Content: answer},
	}
}
