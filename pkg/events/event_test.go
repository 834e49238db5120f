package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIngestionRequested(t *testing.T) {
	e := NewIngestionRequested("cli", "")
	assert.Equal(t, TypeIngestionRequested, e.EventType())
	assert.Equal(t, "cli", StringField(e, PayloadSource))
	assert.Equal(t, "", StringField(e, PayloadCSVPath))
	assert.False(t, e.Timestamp().IsZero())

	e = NewIngestionRequested("nats", "data/other.csv")
	assert.Equal(t, "data/other.csv", StringField(e, PayloadCSVPath))
}

func TestStringFieldIgnoresNonStrings(t *testing.T) {
	e := BaseEvent{Data: map[string]interface{}{"n": 3}}
	assert.Equal(t, "", StringField(e, "n"))
}
