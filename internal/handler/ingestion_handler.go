package handler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/service"
	"ecomm-product-bot/pkg/events"
	pktNats "ecomm-product-bot/pkg/nats"
)

const ingestionDurable = "ecomm-product-bot-ingestion"

var ErrPathOutsideDataDir = errors.New("csv path is outside the data directory")

// IngestionHandler forwards remote ingestion requests from NATS onto the
// in-process event bus.
type IngestionHandler struct {
	publisher service.IPublisherService
	dataDir   string
	logger    logger.ILogger
}

// NewIngestionHandler only accepts remote CSV paths inside the directory of
// the configured dataset.
func NewIngestionHandler(publisher service.IPublisherService, dataCSVPath string, log logger.ILogger) *IngestionHandler {
	return &IngestionHandler{
		publisher: publisher,
		dataDir:   filepath.Dir(filepath.Clean(dataCSVPath)),
		logger:    log,
	}
}

func (h *IngestionHandler) Register(ctx context.Context, sub *pktNats.Subscriber) error {
	return sub.Subscribe(ctx, events.TypeIngestionRequested, ingestionDurable, h.Handle)
}

func (h *IngestionHandler) Handle(ctx context.Context, event events.Event) error {
	source := events.StringField(event, events.PayloadSource)
	if source == "" {
		source = "nats"
	}

	csvPath, err := h.resolvePath(events.StringField(event, events.PayloadCSVPath))
	if err != nil {
		// Redelivery cannot fix a rejected path; the message is acked and dropped.
		h.logger.Warn("IngestionHandler", "remote ingestion request rejected", map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		})
		return nil
	}

	h.logger.Info("IngestionHandler", "remote ingestion request received", map[string]interface{}{
		"source":       source,
		"csv_path":     csvPath,
		"requested_at": event.Timestamp(),
	})
	return h.publisher.RequestIngestion(ctx, source, csvPath)
}

// resolvePath maps a requested path to a CSV file inside dataDir. An empty
// request keeps the configured dataset.
func (h *IngestionHandler) resolvePath(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", nil
	}
	if !strings.EqualFold(filepath.Ext(requested), ".csv") {
		return "", errors.New("csv path must name a .csv file")
	}

	resolved := filepath.Clean(requested)
	if !filepath.IsAbs(resolved) && !strings.HasPrefix(resolved, h.dataDir+string(filepath.Separator)) {
		resolved = filepath.Join(h.dataDir, resolved)
	}

	base, err := filepath.Abs(h.dataDir)
	if err != nil {
		return "", err
	}
	target, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathOutsideDataDir
	}
	return resolved, nil
}
