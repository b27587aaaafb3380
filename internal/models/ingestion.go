package models

import "time"

const (
	IngestionStatusProcessing = "processing"
	IngestionStatusOK         = "ok"
	IngestionStatusError      = "error"
	IngestionStatusSkipped    = "skipped"
)

// IngestionRecord tracks one inbound webhook message. A message id that has
// reached status "ok" is never processed again; that record is the
// idempotency boundary for the whole pipeline.
type IngestionRecord struct {
	MessageID     string    `json:"message_id"`
	Status        string    `json:"status"`
	Action        *string   `json:"action"`
	AppointmentID *string   `json:"appointment_id"`
	Error         *string   `json:"error"`
	Payload       []byte    `json:"-"`
	ReceivedAt    time.Time `json:"received_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
