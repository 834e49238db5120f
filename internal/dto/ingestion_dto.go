package dto

import "time"

// IngestionRequestMessage is the payload of the in-process ingestion topic.
type IngestionRequestMessage struct {
	Source      string    `json:"source"`
	CSVPath     string    `json:"csv_path,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
