package models

import "time"

// AppointmentProps is the nested properties bag stored as JSONB on the
// appointment row. CoachID is duplicated here because the mobile client
// filters on extendedProps.coachId.
type AppointmentProps struct {
	CoachID      string   `json:"coachId"`
	Subject      string   `json:"subject,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	StudentName  *string  `json:"studentName,omitempty"`
	StudentNames []string `json:"studentNames,omitempty"`
	RawText      string   `json:"rawText,omitempty"`
}

// Appointment stores its start/end twice: as the ISO-8601 string the booking
// upsert keys on, and as a native timestamp used for window and range queries.
type Appointment struct {
	ID      string           `json:"id"`
	CoachID string           `json:"coachId"`
	Title   string           `json:"title"`
	Start   string           `json:"start"`
	End     string           `json:"end"`
	StartTS time.Time        `json:"startTS"`
	EndTS   time.Time        `json:"endTS"`
	Props   AppointmentProps `json:"extendedProps"`
	// StudentName is a legacy flat field some early records carry. It is
	// read during matching but never written; Props.StudentName is canonical.
	StudentName *string   `json:"studentName,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StudentNameUnion collects every location a student name may be stored in,
// across current and legacy record shapes.
func (a *Appointment) StudentNameUnion() []string {
	names := make([]string, 0, 3)
	if a.Props.StudentName != nil && *a.Props.StudentName != "" {
		names = append(names, *a.Props.StudentName)
	}
	if a.StudentName != nil && *a.StudentName != "" {
		names = append(names, *a.StudentName)
	}
	names = append(names, a.Props.StudentNames...)
	return names
}
