package service

import (
	"context"
	"encoding/json"
	"time"

	"ecomm-product-bot/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	RequestIngestion(ctx context.Context, source, csvPath string) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) RequestIngestion(ctx context.Context, source, csvPath string) error {
	payload, err := json.Marshal(dto.IngestionRequestMessage{
		Source:      source,
		CSVPath:     csvPath,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}
