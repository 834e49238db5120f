package prompt

import (
	"strings"
	"testing"

	"ecomm-product-bot/internal/constant"
	"ecomm-product-bot/pkg/llm"
	"ecomm-product-bot/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var history = []llm.Message{
	{Role: llm.RoleUser, Content: "Can you tell me the best bluetooth buds?"},
	{Role: llm.RoleAssistant, Content: "boAt Airdopes 141."},
}

func TestContextualizeMessages(t *testing.T) {
	msgs := ContextualizeMessages(history, "What is my previous question?")

	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, constant.ContextualizeQuestionPrompt, msgs[0].Content)
	assert.Equal(t, history, msgs[1:3])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "What is my previous question?"}, msgs[3])
}

func TestAnswerMessages(t *testing.T) {
	docs := []store.Document{
		store.NewReviewDocument("boAt Airdopes 141", "Great bass."),
		store.NewReviewDocument("realme Buds Q2", "Fits well."),
	}

	msgs := AnswerMessages(docs, history, "Which is better?")

	require.Len(t, msgs, 4)
	system := msgs[0].Content
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, system, "Your ecommercebot bot is an expert in product recommendations")
	assert.Contains(t, system, "CONTEXT:\nProduct: boAt Airdopes 141\nReview: Great bass.\n\nProduct: realme Buds Q2\nReview: Fits well.")
	assert.Contains(t, system, "QUESTION: Which is better?")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(system), "YOUR ANSWER:"))
	assert.NotContains(t, system, "{context}")
	assert.Equal(t, "Which is better?", msgs[3].Content)
}

func TestFormatDocumentsWithoutProduct(t *testing.T) {
	out := FormatDocuments([]store.Document{{Content: "ok"}})
	assert.Equal(t, "Review: ok", out)
	assert.Empty(t, FormatDocuments(nil))
}
