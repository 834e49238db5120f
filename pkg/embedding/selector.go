package embedding

import (
	"context"
	"errors"
	"fmt"

	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/pkg/failure"
)

var ErrNoEmbeddingProvider = errors.New("no embedding provider could be initialized")

const probeText = "embedding provider health check"

// Candidate is a provider that has not been constructed yet.
type Candidate struct {
	Name  string
	Build func() (EmbeddingProvider, error)
}

type SelectOptions struct {
	// Preference names the candidate used when more than one is usable.
	Preference string
	// Strict refuses to fall back when the preferred candidate is unusable.
	Strict bool
	// Probe embeds a short text to confirm a candidate works, not just that
	// it could be constructed.
	Probe bool
}

// Select builds every candidate independently, logging individual failures,
// and returns the preferred usable one. It fails only when nothing is usable.
func Select(ctx context.Context, candidates []Candidate, opts SelectOptions, log logger.ILogger) (EmbeddingProvider, error) {
	usable := make(map[string]EmbeddingProvider, len(candidates))
	var order []string
	var causes []error

	for _, c := range candidates {
		provider, err := c.Build()
		if err == nil && opts.Probe {
			_, err = provider.Generate(ctx, probeText, TaskRetrievalQuery)
		}
		if err != nil {
			log.Error("embedding", "Error initializing embedding provider", map[string]interface{}{
				"provider": c.Name,
				"error":    err.Error(),
			})
			causes = append(causes, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}
		log.Info("embedding", "Embedding provider initialized successfully", map[string]interface{}{
			"provider": c.Name,
		})
		usable[c.Name] = provider
		order = append(order, c.Name)
	}

	if len(usable) == 0 {
		err := ErrNoEmbeddingProvider
		if len(causes) > 0 {
			err = fmt.Errorf("%w: %w", ErrNoEmbeddingProvider, errors.Join(causes...))
		}
		return nil, failure.Provider("embedding.select", err)
	}

	if p, ok := usable[opts.Preference]; ok {
		return p, nil
	}

	if opts.Strict {
		return nil, failure.Provider("embedding.select",
			fmt.Errorf("%w: preferred provider %q unavailable and fallback disabled", ErrNoEmbeddingProvider, opts.Preference))
	}

	chosen := usable[order[0]]
	log.Warn("embedding", "Preferred embedding provider unavailable, falling back", map[string]interface{}{
		"preferred": opts.Preference,
		"using":     chosen.Name(),
	})
	return chosen, nil
}
