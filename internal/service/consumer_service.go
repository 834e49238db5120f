package service

import (
	"context"
	"encoding/json"

	"ecomm-product-bot/internal/dto"
	"ecomm-product-bot/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	ingestion IIngestionService
	chatbot   IChatbotService
	log       logger.ILogger
}

// NewConsumerService runs ingestion requests one at a time and attaches the
// resulting store to the chatbot.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestion IIngestionService,
	chatbot IChatbotService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		ingestion: ingestion,
		chatbot:   chatbot,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Ingestion is not idempotent, so nothing is ever redelivered.
	defer msg.Ack()

	var payload dto.IngestionRequestMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "invalid ingestion request", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.log.Info("consumer", "ingestion requested", map[string]interface{}{
		"source":   payload.Source,
		"csv_path": payload.CSVPath,
	})

	res, err := cs.ingestion.Ingest(ctx, payload.CSVPath)
	if err != nil {
		details := map[string]interface{}{
			"source": payload.Source,
			"error":  err.Error(),
		}
		if IsFatalIngestionError(err) {
			cs.log.Error("consumer", "ingestion failed permanently", details)
		} else {
			cs.log.Warn("consumer", "ingestion failed", details)
		}
		return
	}

	cs.chatbot.Attach(res.Store)
}
