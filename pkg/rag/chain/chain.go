package chain

import (
	"context"
	"errors"
	"strings"

	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/llm"
	"ecomm-product-bot/pkg/rag/message"
	"ecomm-product-bot/pkg/rag/prompt"
	"ecomm-product-bot/pkg/rag/session"
	"ecomm-product-bot/pkg/store"
)

var ErrEmptyQuestion = errors.New("question is empty")

// Retriever finds documents relevant to a standalone question.
type Retriever interface {
	GetRelevantDocuments(ctx context.Context, query string) ([]store.Document, error)
}

// Result is one answered question.
type Result struct {
	Answer             string
	StandaloneQuestion string
	Context            []store.Document
}

// ConversationalChain answers questions against the retriever while keeping
// per-session history: rewrite, retrieve, answer, then record the exchange.
type ConversationalChain struct {
	retriever Retriever
	llm       llm.LLMProvider
	sessions  *session.Manager
	messages  *message.Factory
	retry     failure.RetryPolicy
	log       logger.ILogger
}

type Option func(*ConversationalChain)

func WithRetryPolicy(p failure.RetryPolicy) Option {
	return func(c *ConversationalChain) {
		c.retry = p
	}
}

func WithLogger(l logger.ILogger) Option {
	return func(c *ConversationalChain) {
		if l != nil {
			c.log = l
		}
	}
}

func New(retriever Retriever, provider llm.LLMProvider, sessions *session.Manager, opts ...Option) *ConversationalChain {
	c := &ConversationalChain{
		retriever: retriever,
		llm:       provider,
		sessions:  sessions,
		messages:  message.NewFactory(),
		retry:     failure.DefaultRetryPolicy(),
		log:       logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke answers input for sessionID. On success exactly one user turn and
// one assistant turn are appended to the session; on failure nothing is.
func (c *ConversationalChain) Invoke(ctx context.Context, sessionID, input string) (*Result, error) {
	if strings.TrimSpace(input) == "" {
		return nil, failure.Application("chain.invoke", ErrEmptyQuestion)
	}

	var result *Result
	err := c.sessions.Exchange(ctx, sessionID, func(turns []store.Turn) ([]store.Turn, error) {
		history := c.messages.ToLLMHistory(turns)

		standalone, err := c.contextualize(ctx, history, input)
		if err != nil {
			return nil, err
		}

		docs, err := c.retriever.GetRelevantDocuments(ctx, standalone)
		if err != nil {
			return nil, err
		}

		answer, err := c.chat(ctx, prompt.AnswerMessages(docs, history, input))
		if err != nil {
			return nil, err
		}

		result = &Result{Answer: answer, StandaloneQuestion: standalone, Context: docs}
		return c.messages.Exchange(input, answer), nil
	})
	if err != nil {
		c.log.Error("chain", "invoke failed", map[string]interface{}{
			"session_id": sessionID,
			"kind":       failure.KindOf(err).String(),
			"error":      err.Error(),
		})
		return nil, err
	}

	c.log.Info("chain", "question answered", map[string]interface{}{
		"session_id": sessionID,
		"documents":  len(result.Context),
	})
	return result, nil
}

// contextualize passes the question through untouched when there is no history.
func (c *ConversationalChain) contextualize(ctx context.Context, history []llm.Message, question string) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	rewritten, err := c.chat(ctx, prompt.ContextualizeMessages(history, question))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rewritten) == "" {
		return question, nil
	}

	c.log.Debug("chain", "question contextualized", map[string]interface{}{
		"input":      question,
		"standalone": rewritten,
	})
	return rewritten, nil
}

func (c *ConversationalChain) chat(ctx context.Context, messages []llm.Message) (string, error) {
	return failure.Retry(ctx, c.retry, func() (string, error) {
		return c.llm.Chat(ctx, messages)
	})
}
