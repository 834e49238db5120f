package nats

import (
	"testing"

	"ecomm-product-bot/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubjectRoundTrip(t *testing.T) {
	subject := Subject(events.TypeIngestionRequested)
	assert.Equal(t, "events.ingestion.requested", subject)
	assert.Equal(t, events.TypeIngestionRequested, EventType(subject))
	assert.Equal(t, "other", EventType("other"))
}
