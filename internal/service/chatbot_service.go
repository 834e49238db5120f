package service

import (
	"context"
	"errors"
	"sync"

	"ecomm-product-bot/internal/config"
	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/llm"
	"ecomm-product-bot/pkg/rag/chain"
	"ecomm-product-bot/pkg/rag/session"
	"ecomm-product-bot/pkg/vectorstore"
)

var ErrChainNotInitialized = errors.New("conversational chain is not initialized")

// IChatbotService answers product questions for a session.
type IChatbotService interface {
	Ask(ctx context.Context, sessionID, message string) (string, error)
	// Attach binds the chain to a vector store. Until then Ask fails with
	// ErrChainNotInitialized.
	Attach(store *vectorstore.Store)
	Ready() bool
}

// ChainInvoker is the part of the conversational chain the service needs.
type ChainInvoker interface {
	Invoke(ctx context.Context, sessionID, input string) (*chain.Result, error)
}

type chatbotService struct {
	llmProvider llm.LLMProvider
	sessions    *session.Manager
	retry       failure.RetryPolicy
	log         logger.ILogger

	mu    sync.RWMutex
	chain ChainInvoker
}

func NewChatbotService(cfg *config.Config, llmProvider llm.LLMProvider, sessions *session.Manager, log logger.ILogger) IChatbotService {
	return &chatbotService{
		llmProvider: llmProvider,
		sessions:    sessions,
		retry: failure.RetryPolicy{
			MaxRetries:      cfg.LLM.MaxRetries,
			InitialInterval: failure.DefaultRetryPolicy().InitialInterval,
			MaxInterval:     failure.DefaultRetryPolicy().MaxInterval,
		},
		log: log,
	}
}

// NewChatbotServiceWithChain wraps a ready chain; used by the CLI and tests.
func NewChatbotServiceWithChain(c ChainInvoker, log logger.ILogger) IChatbotService {
	return &chatbotService{chain: c, log: log}
}

func (s *chatbotService) Attach(store *vectorstore.Store) {
	if store == nil || s.llmProvider == nil {
		return
	}
	c := chain.New(store.AsRetriever(vectorstore.DefaultTopK), s.llmProvider, s.sessions,
		chain.WithRetryPolicy(s.retry),
		chain.WithLogger(s.log),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.chain == nil
	s.chain = c
	if first {
		s.log.Info("chatbot", "conversational chain initialized", map[string]interface{}{
			"embedder": store.EmbedderName(),
		})
	}
}

func (s *chatbotService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain != nil
}

func (s *chatbotService) Ask(ctx context.Context, sessionID, message string) (string, error) {
	s.mu.RLock()
	c := s.chain
	s.mu.RUnlock()

	if c == nil {
		return "", failure.Application("chatbot.ask", ErrChainNotInitialized)
	}

	res, err := c.Invoke(ctx, sessionID, message)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}
