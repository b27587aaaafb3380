package repository

import (
	"context"

	"github.com/linqiu-w/SwimCoachBack/internal/models"
)

// ClaimOutcome reports what the conditional insert of a processing record
// found.
type ClaimOutcome int

const (
	// ClaimAccepted means this delivery owns the message id and should run
	// the pipeline. Re-deliveries after an earlier error are accepted again.
	ClaimAccepted ClaimOutcome = iota
	// ClaimDuplicate means a prior delivery already completed with status
	// "ok"; no side effects may run.
	ClaimDuplicate
)

type IngestionRepository struct {
	db DBTX
}

func NewIngestionRepository(db DBTX) *IngestionRepository {
	return &IngestionRepository{db: db}
}

// Claim is the idempotency gate: a create-if-absent write of the
// "processing" record. The INSERT .. ON CONFLICT DO NOTHING makes the
// initial transition conditional, closing the read-then-write race the
// upstream platform's redeliveries would otherwise hit.
func (r *IngestionRepository) Claim(ctx context.Context, messageID string, payload []byte) (ClaimOutcome, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO ingestion_records (message_id, status, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id) DO NOTHING
	`, messageID, models.IngestionStatusProcessing, string(payload))
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 1 {
		return ClaimAccepted, nil
	}

	var status string
	if err := r.db.QueryRow(ctx,
		`SELECT status FROM ingestion_records WHERE message_id = $1`, messageID,
	).Scan(&status); err != nil {
		return 0, err
	}
	if status == models.IngestionStatusOK {
		return ClaimDuplicate, nil
	}

	// A prior attempt ended in error (or died mid-processing); take the
	// message over for another run.
	_, err = r.db.Exec(ctx, `
		UPDATE ingestion_records
		SET status = $2, payload = $3, error = NULL, updated_at = NOW()
		WHERE message_id = $1
	`, messageID, models.IngestionStatusProcessing, string(payload))
	if err != nil {
		return 0, err
	}
	return ClaimAccepted, nil
}

func (r *IngestionRepository) MarkOK(ctx context.Context, messageID, action, appointmentID string) error {
	var apptID *string
	if appointmentID != "" {
		apptID = &appointmentID
	}
	_, err := r.db.Exec(ctx, `
		UPDATE ingestion_records
		SET status = $2, action = $3, appointment_id = $4, error = NULL, updated_at = NOW()
		WHERE message_id = $1
	`, messageID, models.IngestionStatusOK, action, apptID)
	return err
}

func (r *IngestionRepository) MarkError(ctx context.Context, messageID, action, reason string) error {
	var act *string
	if action != "" {
		act = &action
	}
	_, err := r.db.Exec(ctx, `
		UPDATE ingestion_records
		SET status = $2, action = $3, error = $4, updated_at = NOW()
		WHERE message_id = $1
	`, messageID, models.IngestionStatusError, act, reason)
	return err
}

func (r *IngestionRepository) MarkSkipped(ctx context.Context, messageID, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE ingestion_records
		SET status = $2, error = $3, updated_at = NOW()
		WHERE message_id = $1
	`, messageID, models.IngestionStatusSkipped, reason)
	return err
}

func (r *IngestionRepository) Get(ctx context.Context, messageID string) (*models.IngestionRecord, error) {
	var rec models.IngestionRecord
	err := r.db.QueryRow(ctx, `
		SELECT message_id, status, action, appointment_id, error, payload, received_at, updated_at
		FROM ingestion_records
		WHERE message_id = $1
	`, messageID).Scan(
		&rec.MessageID,
		&rec.Status,
		&rec.Action,
		&rec.AppointmentID,
		&rec.Error,
		&rec.Payload,
		&rec.ReceivedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
