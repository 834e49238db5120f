package service

import (
	"context"
	"testing"
	"time"

	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/repository/memory"
	"ecomm-product-bot/pkg/embedding"
	"ecomm-product-bot/pkg/rag/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestionRequestAttachesChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t, sampleCSV)
	repo := &memRepo{}
	ingestion := NewIngestionService(cfg, logger.NewNopLogger(),
		WithCandidates([]embedding.Candidate{usable("openai")}),
		WithRepositoryOpener((&openerSpy{repo: repo}).open),
	)
	chatbot := NewChatbotService(cfg, &echoLLM{}, session.NewManager(memory.NewSessionRepository(time.Hour, 0, 0)), logger.NewNopLogger())

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, "ingestion", ingestion, chatbot, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("ingestion", pubSub)
	require.NoError(t, publisher.RequestIngestion(ctx, "test", ""))

	assert.Eventually(t, chatbot.Ready, 2*time.Second, 10*time.Millisecond)
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.rows, 3)
}
