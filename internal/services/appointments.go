package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/linqiu-w/SwimCoachBack/internal/emailparse"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
	"github.com/linqiu-w/SwimCoachBack/internal/repository"
	"github.com/sirupsen/logrus"
)

// cancelWindow is the tolerance of the cancel fallback match, absorbing
// rounding and zone artifacts between the email's stated time and the stored
// timestamp.
const cancelWindow = 2 * time.Minute

// upsertAppointment realizes at-most-one-booking-per-(coach, start): a read
// on the exact ISO start string, then either a merge or an insert. The
// read-then-write pair has a race window under truly concurrent duplicate
// deliveries; webhook delivery is effectively serialized per message and the
// idempotency claim guards redeliveries, so this is accepted.
func (s *IngestService) upsertAppointment(
	ctx context.Context,
	coachID, subject, text string,
	start, end time.Time,
	students emailparse.Students,
	coachHint string,
) (string, error) {
	if !start.Before(end) {
		return "", fmt.Errorf("%w: start %s is not before end %s", ErrValidation,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	startISO := start.UTC().Format(time.RFC3339)
	endISO := end.UTC().Format(time.RFC3339)

	notes := GenerateStructuredNotes(NoteDetails{
		StudentName: students.Name,
		CourseName:  lessonTypeFromSubject(subject),
		CoachName:   coachHint,
		Start:       start,
		End:         end,
	}, s.zone)

	title := "Lesson"
	if students.Name != "" {
		title = "Lesson – " + students.Name
	}

	appt := &models.Appointment{
		CoachID: coachID,
		Title:   title,
		Start:   startISO,
		End:     endISO,
		StartTS: start.UTC(),
		EndTS:   end.UTC(),
		Props: models.AppointmentProps{
			CoachID: coachID,
			Subject: subject,
			Notes:   notes,
			RawText: truncate(text, rawTextLimit),
		},
	}
	if students.Name != "" {
		name := students.Name
		appt.Props.StudentName = &name
	}
	if len(students.Names) > 0 {
		appt.Props.StudentNames = students.Names
	}

	existing, err := s.appointments.FindByCoachAndStart(ctx, coachID, startISO)
	switch {
	case err == nil:
		if err := s.appointments.Merge(ctx, existing.ID, appt); err != nil {
			return "", err
		}
		s.publish(LessonEvent{Type: "updated", AppointmentID: existing.ID, CoachID: coachID, Title: title, Start: startISO, End: endISO})
		return existing.ID, nil
	case errors.Is(err, pgx.ErrNoRows):
		if err := s.appointments.Insert(ctx, appt); err != nil {
			return "", err
		}
		s.publish(LessonEvent{Type: "created", AppointmentID: appt.ID, CoachID: coachID, Title: title, Start: startISO, End: endISO})
		return appt.ID, nil
	default:
		return "", err
	}
}

// cancelStrict deletes exactly one appointment. Matching is two-phase (exact
// ISO start, then a ±2-minute window on the native timestamp) and within a
// phase candidates are filtered by student-name membership and, when a coach
// constraint exists, coach equality. Zero or multiple survivors are both
// errors: the system never guesses which appointment to delete.
func (s *IngestService) cancelStrict(
	ctx context.Context,
	start time.Time,
	studentNames []string,
	coachID string,
) (string, string, error) {
	startISO := start.UTC().Format(time.RFC3339)

	candidates, err := s.appointments.ListByStartISO(ctx, startISO)
	if err != nil {
		return "", "", err
	}
	matched := filterCandidates(candidates, studentNames, coachID)

	if len(matched) == 0 {
		from := start.UTC().Truncate(time.Minute).Add(-cancelWindow)
		to := start.UTC().Truncate(time.Minute).Add(cancelWindow)
		candidates, err = s.appointments.ListByStartWindow(ctx, from, to)
		if err != nil {
			return "", "", err
		}
		matched = filterCandidates(candidates, studentNames, coachID)
	}

	constraint := "time & student"
	if coachID != "" {
		constraint += " & coach"
	}
	if len(matched) == 0 {
		return "", "", fmt.Errorf("%w by %s", ErrNoMatch, constraint)
	}
	if len(matched) > 1 {
		return "", "", fmt.Errorf("%w by %s; disambiguation required", ErrAmbiguous, constraint)
	}

	target := matched[0]
	if err := s.appointments.Delete(ctx, target.ID); err != nil {
		return "", "", err
	}
	s.publish(LessonEvent{Type: "cancelled", AppointmentID: target.ID, CoachID: target.CoachID})
	return target.ID, target.CoachID, nil
}

// updateStrict rewrites the soonest future appointment whose student-name set
// contains the target. More than one future booking for the same student is
// not disambiguated further; the soonest is taken and the ambiguity logged.
func (s *IngestService) updateStrict(
	ctx context.Context,
	studentName, newCoachID, newCoachHint string,
	newStart, newEnd time.Time,
) (string, error) {
	if !newStart.Before(newEnd) {
		return "", fmt.Errorf("%w: start %s is not before end %s", ErrValidation,
			newStart.Format(time.RFC3339), newEnd.Format(time.RFC3339))
	}

	future, err := s.appointments.ListFuture(ctx, time.Now().UTC())
	if err != nil {
		return "", err
	}

	studentKey := emailparse.Canon(studentName)
	matched := make([]models.Appointment, 0, 1)
	for _, appt := range future {
		for _, name := range appt.StudentNameUnion() {
			if emailparse.Canon(name) == studentKey {
				matched = append(matched, appt)
				break
			}
		}
	}

	if len(matched) == 0 {
		return "", fmt.Errorf("%w: no future appointments for student %q", ErrNoMatch, studentName)
	}
	if len(matched) > 1 {
		s.logger.WithFields(logrus.Fields{
			"student":    studentName,
			"candidates": len(matched),
		}).Warn("ambiguous change target, taking soonest")
	}

	target := matched[0]
	oldStudent := studentName
	if names := target.StudentNameUnion(); len(names) > 0 {
		oldStudent = names[0]
	}

	startISO := newStart.UTC().Format(time.RFC3339)
	endISO := newEnd.UTC().Format(time.RFC3339)
	notes := GenerateStructuredNotes(NoteDetails{
		StudentName: oldStudent,
		CourseName:  lessonTypeFromSubject(target.Title),
		CoachName:   newCoachHint,
		Start:       newStart,
		End:         newEnd,
	}, s.zone)

	err = s.appointments.UpdateSchedule(ctx, target.ID, repository.ScheduleUpdate{
		CoachID:  newCoachID,
		StartISO: startISO,
		EndISO:   endISO,
		StartTS:  newStart.UTC(),
		EndTS:    newEnd.UTC(),
		Notes:    notes,
	})
	if err != nil {
		return "", err
	}
	s.publish(LessonEvent{Type: "updated", AppointmentID: target.ID, CoachID: newCoachID, Title: target.Title, Start: startISO, End: endISO})
	return target.ID, nil
}

// filterCandidates keeps appointments whose student-name union (canonical
// and legacy locations) intersects the parsed names, and whose coach matches
// the constraint when one was supplied.
func filterCandidates(candidates []models.Appointment, studentNames []string, coachID string) []models.Appointment {
	studentKeys := make(map[string]struct{}, len(studentNames))
	for _, n := range studentNames {
		studentKeys[emailparse.Canon(n)] = struct{}{}
	}

	matched := make([]models.Appointment, 0, 1)
	for _, appt := range candidates {
		studentOK := false
		for _, name := range appt.StudentNameUnion() {
			if _, ok := studentKeys[emailparse.Canon(name)]; ok {
				studentOK = true
				break
			}
		}
		docCoach := appt.Props.CoachID
		if docCoach == "" {
			docCoach = appt.CoachID
		}
		coachOK := coachID == "" || docCoach == coachID
		if studentOK && coachOK {
			matched = append(matched, appt)
		}
	}
	return matched
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
