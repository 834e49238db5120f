package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"ecomm-product-bot/internal/bootstrap"
	"ecomm-product-bot/internal/config"
	"ecomm-product-bot/internal/constant"
	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/service"
	"ecomm-product-bot/pkg/events"
	"ecomm-product-bot/pkg/llm/factory"
	pktNats "ecomm-product-bot/pkg/nats"
	"ecomm-product-bot/pkg/rag/session"
	"ecomm-product-bot/pkg/store"
	"ecomm-product-bot/pkg/vectorstore"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ecommbot",
		Usage: "Operate the product review chatbot",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load the review CSV into the vector store",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Path to the review CSV (defaults to DATA_CSV_PATH)",
					},
					&cli.BoolFlag{
						Name:  "skip-search",
						Usage: "Do not run the demo similarity search afterwards",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Run a similarity search against the vector store",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search text",
						Value:   constant.DemoSearchQuery,
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of results",
						Value: vectorstore.DefaultTopK,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask questions in one session; runs the demo conversation when no question is given",
				ArgsUsage: "[question...]",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session id",
						Value:   constant.DemoSessionID,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Clear the session's history before asking",
					},
				},
			},
			{
				Name:   "trigger",
				Usage:  "Publish an ingestion request for running servers over NATS",
				Action: triggerCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Path to the review CSV as seen by the server",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Label recorded with the request",
						Value: "cli",
					},
				},
			},
		},
	}
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

func ingestCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger(c.Bool("verbose"))
	defer sysLogger.Sync()

	ingestion := service.NewIngestionService(cfg, sysLogger)
	res, err := ingestion.Ingest(ctx, c.String("csv"))
	if err != nil {
		color.Red("Ingestion failed: %v", err)
		return cli.Exit("", 1)
	}
	defer res.Store.Release()

	color.Green("Inserted %d documents using %s embeddings", len(res.InsertedIDs), res.Embedder)
	if res.Skipped > 0 {
		color.Yellow("Skipped %d rows without title or review", res.Skipped)
	}

	if c.Bool("skip-search") {
		return nil
	}
	return runSearch(ctx, res.Store, constant.DemoSearchQuery, vectorstore.DefaultTopK)
}

func searchCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	query := strings.TrimSpace(c.String("query"))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger(c.Bool("verbose"))
	defer sysLogger.Sync()

	st, err := service.NewIngestionService(cfg, sysLogger).OpenStore(ctx)
	if err != nil {
		color.Red("Vector store unavailable: %v", err)
		return cli.Exit("", 1)
	}
	defer st.Release()

	if n, err := st.Count(ctx); err == nil {
		color.New(color.Faint).Printf("[%d documents embedded by %s]\n", n, st.EmbedderName())
	}
	return runSearch(ctx, st, query, c.Int("k"))
}

func runSearch(ctx context.Context, st *vectorstore.Store, query string, k int) error {
	docs, err := st.SimilaritySearch(ctx, query, k)
	if err != nil {
		color.Red("Search failed: %v", err)
		return cli.Exit("", 1)
	}

	color.Cyan("Query: %s", query)
	if len(docs) == 0 {
		color.Yellow("No results")
		return nil
	}
	for _, d := range docs {
		printDocument(d)
	}
	return nil
}

func printDocument(d store.Document) {
	fmt.Println()
	fmt.Println(d.Content)
	color.New(color.Faint).Printf("[product: %s, score: %.4f]\n", d.ProductName(), d.Score)
}

func askCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger(c.Bool("verbose"))
	defer sysLogger.Sync()

	questions := constant.DemoQuestions
	if c.Args().Present() {
		questions = []string{strings.Join(c.Args().Slice(), " ")}
	}

	llmProvider, err := factory.NewLLMProvider(cfg.LLM, cfg.Keys)
	if err != nil {
		color.Red("LLM unavailable: %v", err)
		return cli.Exit("", 1)
	}

	st, err := service.NewIngestionService(cfg, sysLogger).OpenStore(ctx)
	if err != nil {
		color.Red("Vector store unavailable: %v", err)
		return cli.Exit("", 1)
	}
	defer st.Release()

	// Same backend as the server, so a redis-backed session can be continued here.
	rdb := bootstrap.NewRedisClient(cfg, sysLogger)
	if rdb != nil {
		defer rdb.Close()
	}
	sessions := session.NewManager(bootstrap.NewSessionRepository(cfg, rdb, sysLogger))
	chatbot := service.NewChatbotService(cfg, llmProvider, sessions, sysLogger)
	chatbot.Attach(st)

	sessionID := c.String("session")
	if c.Bool("reset") {
		if err := sessions.Reset(ctx, sessionID); err != nil {
			color.Red("Failed to reset session: %v", err)
			return cli.Exit("", 1)
		}
		color.Yellow("Session %s cleared", sessionID)
	}

	for _, q := range questions {
		color.Cyan("> %s", q)
		answer, err := chatbot.Ask(ctx, sessionID, q)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			color.Red("Failed: %v", err)
			return cli.Exit("", 1)
		}
		fmt.Println(answer)
		fmt.Println()
	}

	if history, err := sessions.History(ctx, sessionID); err == nil {
		color.New(color.Faint).Printf("[session %s: %d turns]\n", sessionID, len(history))
	}
	return nil
}

func triggerCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger(c.Bool("verbose"))
	defer sysLogger.Sync()

	if cfg.App.NatsURL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}

	publisher, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		return cli.Exit("", 1)
	}
	defer publisher.Close()

	event := events.NewIngestionRequested(c.String("source"), c.String("csv"))
	if err := publisher.Publish(ctx, event); err != nil {
		color.Red("Failed to publish: %v", err)
		return cli.Exit("", 1)
	}

	color.Green("Ingestion requested on %s", pktNats.Subject(event.EventType()))
	return nil
}
