package events

import "time"

const (
	// TypeIngestionRequested asks the web process to ingest the review CSV.
	TypeIngestionRequested = "ingestion.requested"

	PayloadSource  = "source"
	PayloadCSVPath = "csv_path"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ingestion.requested").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewIngestionRequested builds the event; an empty csvPath means the
// receiver's configured path.
func NewIngestionRequested(source, csvPath string) BaseEvent {
	data := map[string]interface{}{PayloadSource: source}
	if csvPath != "" {
		data[PayloadCSVPath] = csvPath
	}
	return BaseEvent{
		Type:       TypeIngestionRequested,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// StringField reads a string payload value, "" when absent or not a string.
func StringField(e Event, key string) string {
	if v, ok := e.Payload()[key].(string); ok {
		return v
	}
	return ""
}
