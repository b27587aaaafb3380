package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
)

type AppointmentRepository struct {
	db DBTX
}

func NewAppointmentRepository(db DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `
	id, coach_id, title, start_iso, end_iso, start_ts, end_ts, props,
	student_name, created_at, updated_at
`

func scanAppointment(row interface{ Scan(dest ...any) error }) (*models.Appointment, error) {
	var appt models.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.CoachID,
		&appt.Title,
		&appt.Start,
		&appt.End,
		&appt.StartTS,
		&appt.EndTS,
		&appt.Props,
		&appt.StudentName,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindByCoachAndStart looks up the natural dedup key for booking: at most one
// appointment exists per coach per exact ISO start string.
func (r *AppointmentRepository) FindByCoachAndStart(ctx context.Context, coachID, startISO string) (*models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE coach_id = $1 AND start_iso = $2
		LIMIT 1
	`
	return scanAppointment(r.db.QueryRow(ctx, query, coachID, startISO))
}

func (r *AppointmentRepository) Insert(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	query := `
		INSERT INTO appointments (id, coach_id, title, start_iso, end_iso, start_ts, end_ts, props)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		appt.ID,
		appt.CoachID,
		appt.Title,
		appt.Start,
		appt.End,
		appt.StartTS,
		appt.EndTS,
		appt.Props,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
}

// Merge refreshes an existing appointment in place. The props bag is merged
// key-wise over the stored one, so fields the new payload does not carry
// (omitted via omitempty) survive the write.
func (r *AppointmentRepository) Merge(ctx context.Context, id string, appt *models.Appointment) error {
	query := `
		UPDATE appointments
		SET coach_id = $2,
			title = $3,
			start_iso = $4,
			end_iso = $5,
			start_ts = $6,
			end_ts = $7,
			props = props || $8,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query,
		id,
		appt.CoachID,
		appt.Title,
		appt.Start,
		appt.End,
		appt.StartTS,
		appt.EndTS,
		appt.Props,
	)
	return err
}

type ScheduleUpdate struct {
	CoachID  string
	StartISO string
	EndISO   string
	StartTS  time.Time
	EndTS    time.Time
	Notes    string
}

// UpdateSchedule rewrites the time window, coach, and structured notes of an
// appointment; used by the change action's strict update.
func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, id string, upd ScheduleUpdate) error {
	query := `
		UPDATE appointments
		SET coach_id = $2,
			start_iso = $3,
			end_iso = $4,
			start_ts = $5,
			end_ts = $6,
			props = jsonb_set(jsonb_set(props, '{coachId}', to_jsonb($2::text)), '{notes}', to_jsonb($7::text)),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, upd.CoachID, upd.StartISO, upd.EndISO, upd.StartTS, upd.EndTS, upd.Notes)
	return err
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *AppointmentRepository) listQuery(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := make([]models.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appts, nil
}

// ListByStartISO is phase one of the strict cancel match: exact string
// equality on the stored ISO form.
func (r *AppointmentRepository) ListByStartISO(ctx context.Context, startISO string) ([]models.Appointment, error) {
	return r.listQuery(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE start_iso = $1
	`, startISO)
}

// ListByStartWindow is phase two: a native-timestamp range that absorbs
// rounding and zone artifacts between the email's stated time and the stored
// value.
func (r *AppointmentRepository) ListByStartWindow(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	return r.listQuery(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE start_ts >= $1 AND start_ts <= $2
	`, from, to)
}

// ListFuture returns appointments starting at or after the given instant,
// soonest first.
func (r *AppointmentRepository) ListFuture(ctx context.Context, notBefore time.Time) ([]models.Appointment, error) {
	return r.listQuery(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE start_ts >= $1
		ORDER BY start_ts ASC
	`, notBefore)
}

func (r *AppointmentRepository) ListByCoach(ctx context.Context, coachID string) ([]models.Appointment, error) {
	return r.listQuery(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE coach_id = $1
		ORDER BY start_ts ASC, id ASC
	`, coachID)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}
