package bootstrap

import (
	"context"
	"crypto/rand"
	"time"

	"ecomm-product-bot/internal/config"
	"ecomm-product-bot/internal/controller"
	"ecomm-product-bot/internal/handler"
	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/repository/contract"
	"ecomm-product-bot/internal/repository/memory"
	redisrepo "ecomm-product-bot/internal/repository/redis"
	"ecomm-product-bot/internal/service"
	"ecomm-product-bot/pkg/embedding"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/llm"
	"ecomm-product-bot/pkg/llm/factory"
	pktNats "ecomm-product-bot/pkg/nats"
	"ecomm-product-bot/pkg/rag/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const ingestionTopic = "ingestion.requested"

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController

	// Services
	ChatbotService   service.IChatbotService
	IngestionService service.IIngestionService
	PublisherService service.IPublisherService
	ConsumerService  service.IConsumerService

	Logger        logger.ILogger
	SessionSecret []byte

	cfg              *config.Config
	pubSub           *gochannel.GoChannel
	redis            *redis.Client
	natsSub          *pktNats.Subscriber
	ingestionHandler *handler.IngestionHandler
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Optional infrastructure
	rdb := NewRedisClient(cfg, sysLogger)

	// 2. Sessions
	sessions := session.NewManager(NewSessionRepository(cfg, rdb, sysLogger))

	// 3. Providers
	var llmProvider llm.LLMProvider
	if p, err := factory.NewLLMProvider(cfg.LLM, cfg.Keys); err != nil {
		sysLogger.Error("bootstrap", "failed to initialize LLM provider", map[string]interface{}{
			"provider": cfg.LLM.Provider,
			"error":    err.Error(),
		})
	} else {
		llmProvider = p
	}

	ingestionOpts := []service.IngestionOption{}
	if rdb != nil {
		ingestionOpts = append(ingestionOpts, service.WithQueryCache(
			embedding.NewRedisQueryCache(rdb, cfg.Embedding.CacheTTL, "emb"),
		))
	}

	// 4. Services
	ingestionService := service.NewIngestionService(cfg, sysLogger, ingestionOpts...)
	chatbotService := service.NewChatbotService(cfg, llmProvider, sessions, sysLogger)

	// 5. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NopLogger{},
	)
	publisherService := service.NewPublisherService(ingestionTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, ingestionTopic, ingestionService, chatbotService, sysLogger)

	// 6. Remote ingestion requests
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		var err error
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("bootstrap", "failed to connect to NATS subscriber", map[string]interface{}{"error": err.Error()})
			natsSub = nil
		}
	}

	return &Container{
		ChatbotController: controller.NewChatbotController(chatbotService),
		ChatbotService:    chatbotService,
		IngestionService:  ingestionService,
		PublisherService:  publisherService,
		ConsumerService:   consumerService,
		Logger:            sysLogger,
		SessionSecret:     sessionSecret(cfg, sysLogger),

		cfg:              cfg,
		pubSub:           pubSub,
		redis:            rdb,
		natsSub:          natsSub,
		ingestionHandler: handler.NewIngestionHandler(publisherService, cfg.Ingest.CSVPath, sysLogger),
	}
}

// Start runs the ingestion consumer and the NATS bridge, binds the chain to
// the existing collection and optionally queues a startup ingestion. None of
// it blocks serving.
func (c *Container) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		c.Logger.Error("bootstrap", "configuration invalid", map[string]interface{}{"error": err.Error()})
		return failure.Configuration("bootstrap.start", err)
	}

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}

	if c.natsSub != nil {
		if err := c.ingestionHandler.Register(ctx, c.natsSub); err != nil {
			c.Logger.Warn("bootstrap", "failed to subscribe to remote ingestion requests", map[string]interface{}{"error": err.Error()})
		}
	}

	go func() {
		store, err := c.IngestionService.OpenStore(ctx)
		if err != nil {
			c.Logger.Error("bootstrap", "vector store unavailable, chat is disabled until ingestion succeeds", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		c.ChatbotService.Attach(store)
	}()

	if c.cfg.Ingest.OnStartup {
		return c.PublisherService.RequestIngestion(ctx, "startup", "")
	}
	return nil
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.pubSub != nil {
		_ = c.pubSub.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}

// NewSessionRepository picks the session backend. SESSION_BACKEND=redis
// falls back to memory when rdb is nil.
func NewSessionRepository(cfg *config.Config, rdb *redis.Client, log logger.ILogger) contract.SessionRepository {
	if cfg.Session.Backend == "redis" {
		if rdb != nil {
			return redisrepo.NewSessionRepository(rdb, cfg.Session.TTL, cfg.Session.MaxCount, cfg.Session.MaxTurns)
		}
		log.Warn("bootstrap", "SESSION_BACKEND=redis but Redis is unavailable, using memory", nil)
	}
	return memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.MaxCount, cfg.Session.MaxTurns)
}

// NewRedisClient returns nil when REDIS_URL is unset or unreachable.
func NewRedisClient(cfg *config.Config, log logger.ILogger) *redis.Client {
	if cfg.App.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("bootstrap", "failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("bootstrap", "failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// sessionSecret falls back to a random per-process key, which invalidates
// every session cookie on restart.
func sessionSecret(cfg *config.Config, log logger.ILogger) []byte {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret)
	}
	log.Warn("bootstrap", "SESSION_SECRET not set, using a random key", nil)
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	return secret
}
