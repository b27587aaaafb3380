package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linqiu-w/SwimCoachBack/internal/emailparse"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
	"github.com/linqiu-w/SwimCoachBack/internal/repository"
	"github.com/sirupsen/logrus"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrUnknownAction = errors.New("unknown email type")
	ErrCoachNotFound = errors.New("coach not found")
	ErrNoMatch       = errors.New("no appointment matched")
	ErrAmbiguous     = errors.New("multiple appointments matched")
)

const rawTextLimit = 2000

// UnknownActionPolicy decides what happens to emails no classifier phrase
// matched. Treating them as bookings was the historical behavior; rejecting
// is the default because a silent mis-booking is worse than a bounced email.
const (
	UnknownActionReject = "reject"
	UnknownActionBook   = "book"
)

type appointmentStore interface {
	FindByCoachAndStart(ctx context.Context, coachID, startISO string) (*models.Appointment, error)
	Insert(ctx context.Context, appt *models.Appointment) error
	Merge(ctx context.Context, id string, appt *models.Appointment) error
	UpdateSchedule(ctx context.Context, id string, upd repository.ScheduleUpdate) error
	Delete(ctx context.Context, id string) error
	ListByStartISO(ctx context.Context, startISO string) ([]models.Appointment, error)
	ListByStartWindow(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	ListFuture(ctx context.Context, notBefore time.Time) ([]models.Appointment, error)
}

type ingestionLog interface {
	Claim(ctx context.Context, messageID string, payload []byte) (repository.ClaimOutcome, error)
	MarkOK(ctx context.Context, messageID, action, appointmentID string) error
	MarkError(ctx context.Context, messageID, action, reason string) error
	MarkSkipped(ctx context.Context, messageID, reason string) error
}

type hintResolver interface {
	Resolve(ctx context.Context, hint string) (string, error)
}

// LessonEvent is pushed to connected coach clients when ingestion mutates an
// appointment.
type LessonEvent struct {
	Type          string `json:"type"`
	AppointmentID string `json:"appointment_id"`
	CoachID       string `json:"coach_id"`
	Title         string `json:"title,omitempty"`
	Start         string `json:"start,omitempty"`
	End           string `json:"end,omitempty"`
}

type lessonNotifier interface {
	PublishLesson(event LessonEvent)
}

// IngestRequest is one inbound webhook payload, signature already verified.
// The sender's date header lives only in Raw; verification consumed it before
// this type is built.
type IngestRequest struct {
	Subject   string
	Text      string
	HTML      string
	MessageID string
	Raw       []byte
}

// IngestOutcome is what the webhook handler renders into the response body.
type IngestOutcome struct {
	Action        string   `json:"action,omitempty"`
	AppointmentID string   `json:"id,omitempty"`
	CoachID       string   `json:"coachId,omitempty"`
	Duplicate     bool     `json:"duplicate,omitempty"`
	Expired       bool     `json:"expired,omitempty"`
	Deleted       bool     `json:"deleted,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	StartISO      string   `json:"startISO,omitempty"`
	EndISO        string   `json:"endISO,omitempty"`
	StudentName   string   `json:"studentName,omitempty"`
	StudentNames  []string `json:"studentNames,omitempty"`
}

// IngestService sequences the pipeline: idempotency claim, classification,
// field extraction, coach resolution, and the repository operation for the
// classified action. Per-message state moves processing → ok/error/skipped.
type IngestService struct {
	appointments  appointmentStore
	log           ingestionLog
	resolver      hintResolver
	notifier      lessonNotifier
	logger        *logrus.Logger
	zone          *time.Location
	graceMinutes  int
	unknownPolicy string
}

func NewIngestService(
	appointments appointmentStore,
	log ingestionLog,
	resolver hintResolver,
	notifier lessonNotifier,
	logger *logrus.Logger,
	zone *time.Location,
	graceMinutes int,
	unknownPolicy string,
) *IngestService {
	if zone == nil {
		zone = time.UTC
	}
	if graceMinutes <= 0 {
		graceMinutes = 10
	}
	if unknownPolicy == "" {
		unknownPolicy = UnknownActionReject
	}
	return &IngestService{
		appointments:  appointments,
		log:           log,
		resolver:      resolver,
		notifier:      notifier,
		logger:        logger,
		zone:          zone,
		graceMinutes:  graceMinutes,
		unknownPolicy: unknownPolicy,
	}
}

// Ingest runs one message through the pipeline and persists its outcome.
// Replays of an already-completed message short-circuit before any side
// effect.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*IngestOutcome, error) {
	if strings.TrimSpace(req.MessageID) == "" {
		return nil, fmt.Errorf("%w: messageId is required", ErrValidation)
	}

	claim, err := s.log.Claim(ctx, req.MessageID, req.Raw)
	if err != nil {
		return nil, err
	}
	if claim == repository.ClaimDuplicate {
		s.logger.WithField("messageId", req.MessageID).Info("duplicate delivery short-circuited")
		return &IngestOutcome{Duplicate: true}, nil
	}

	outcome, err := s.process(ctx, req)
	if err != nil {
		if errors.Is(err, ErrUnknownAction) {
			if markErr := s.log.MarkSkipped(ctx, req.MessageID, err.Error()); markErr != nil {
				s.logger.WithField("messageId", req.MessageID).WithError(markErr).Error("mark skipped failed")
			}
		} else {
			action := ""
			if outcome != nil {
				action = outcome.Action
			}
			if markErr := s.log.MarkError(ctx, req.MessageID, action, err.Error()); markErr != nil {
				s.logger.WithField("messageId", req.MessageID).WithError(markErr).Error("mark error failed")
			}
		}
		s.logger.WithField("messageId", req.MessageID).WithError(err).Warn("ingestion failed")
		return outcome, err
	}

	recordedAction := outcome.Action
	if err := s.log.MarkOK(ctx, req.MessageID, recordedAction, outcome.AppointmentID); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"messageId": req.MessageID,
		"action":    recordedAction,
		"id":        outcome.AppointmentID,
	}).Info("ingestion complete")
	return outcome, nil
}

func (s *IngestService) process(ctx context.Context, req IngestRequest) (*IngestOutcome, error) {
	subject := strings.TrimSpace(req.Subject)
	text := strings.TrimSpace(req.Text)
	if text == "" && req.HTML != "" {
		text = emailparse.StripHTML(req.HTML)
	}
	if subject == "" && text == "" {
		return nil, fmt.Errorf("%w: missing subject/text", ErrValidation)
	}

	action := emailparse.Classify(subject, text)
	if action == emailparse.ActionUnknown {
		if s.unknownPolicy == UnknownActionBook {
			action = emailparse.ActionBook
		} else {
			return nil, ErrUnknownAction
		}
	}

	log := s.logger.WithFields(logrus.Fields{"messageId": req.MessageID, "action": action})

	students := emailparse.ExtractStudents(subject, text)
	when := emailparse.ExtractWhen(subject, text, req.HTML, s.zone)
	coachHint := emailparse.ExtractCoachHint(subject, text, req.HTML)

	if action == emailparse.ActionChange {
		details := emailparse.ExtractChangeDetails(text, s.zone)
		if details.StudentName != "" {
			students = emailparse.Students{Name: details.StudentName}
		}
		if details.Start != nil {
			when = emailparse.TimeWindow{Start: details.Start, End: details.End}
		}
		if details.CoachHint != "" {
			coachHint = details.CoachHint
		}
	}

	log.WithFields(logrus.Fields{
		"coachHint": coachHint,
		"student":   students.Name,
		"start":     isoOrEmpty(when.Start),
		"end":       isoOrEmpty(when.End),
	}).Info("fields extracted")

	coachID := ""
	if coachHint != "" {
		var err error
		coachID, err = s.resolver.Resolve(ctx, coachHint)
		if err != nil {
			return nil, err
		}
	}
	if coachID == "" && action != emailparse.ActionCancel {
		if coachHint == "" {
			return nil, fmt.Errorf("%w: %s requires a coach (not found in subject/text)", ErrValidation, action)
		}
		return nil, fmt.Errorf("%w for hint %q; add it to the coach's aliases", ErrCoachNotFound, coachHint)
	}

	// Stale forwarded emails must not resurrect or duplicate old
	// appointments: anything older than the grace window short-circuits to
	// a benign expired outcome before any write is attempted.
	if when.Start != nil && s.expired(*when.Start) {
		log.WithField("start", when.Start.Format(time.RFC3339)).Info("event expired, skipping write")
		return &IngestOutcome{
			Action:   "expired",
			Expired:  true,
			Reason:   fmt.Sprintf("event start %s is past the %d-minute grace window", when.Start.Format(time.RFC3339), s.graceMinutes),
			StartISO: isoOrEmpty(when.Start),
		}, nil
	}

	switch action {
	case emailparse.ActionBook:
		return s.ingestBook(ctx, subject, text, when, students, coachID, coachHint)
	case emailparse.ActionCancel:
		return s.ingestCancel(ctx, when, students, coachID)
	case emailparse.ActionChange:
		return s.ingestChange(ctx, subject, when, students, coachID, coachHint)
	}
	return nil, fmt.Errorf("%w: unhandled action %q", ErrValidation, action)
}

func (s *IngestService) ingestBook(
	ctx context.Context,
	subject, text string,
	when emailparse.TimeWindow,
	students emailparse.Students,
	coachID, coachHint string,
) (*IngestOutcome, error) {
	if !when.Complete() {
		return &IngestOutcome{Action: "book"},
			fmt.Errorf("%w: booking parsed but start/end missing", ErrValidation)
	}

	id, err := s.upsertAppointment(ctx, coachID, subject, text, *when.Start, *when.End, students, coachHint)
	if err != nil {
		return &IngestOutcome{Action: "book"}, err
	}
	return &IngestOutcome{
		Action:        "book",
		AppointmentID: id,
		CoachID:       coachID,
		StartISO:      isoOrEmpty(when.Start),
		EndISO:        isoOrEmpty(when.End),
		StudentName:   students.Name,
		StudentNames:  students.Names,
	}, nil
}

func (s *IngestService) ingestCancel(
	ctx context.Context,
	when emailparse.TimeWindow,
	students emailparse.Students,
	coachID string,
) (*IngestOutcome, error) {
	outcome := &IngestOutcome{Action: "cancel"}
	if when.Start == nil {
		return outcome, fmt.Errorf("%w: cancel requires a start time", ErrValidation)
	}
	if students.Empty() {
		return outcome, fmt.Errorf("%w: cancel requires student name(s)", ErrValidation)
	}

	id, coach, err := s.cancelStrict(ctx, *when.Start, students.NameList(), coachID)
	if err != nil {
		return outcome, err
	}
	outcome.AppointmentID = id
	outcome.CoachID = coach
	outcome.Deleted = true
	outcome.StartISO = isoOrEmpty(when.Start)
	outcome.StudentName = students.Name
	outcome.StudentNames = students.Names
	return outcome, nil
}

func (s *IngestService) ingestChange(
	ctx context.Context,
	subject string,
	when emailparse.TimeWindow,
	students emailparse.Students,
	coachID, coachHint string,
) (*IngestOutcome, error) {
	outcome := &IngestOutcome{Action: "change"}
	if !when.Complete() {
		return outcome, fmt.Errorf("%w: change requires new start/end", ErrValidation)
	}
	if students.Name == "" {
		return outcome, fmt.Errorf("%w: change requires a student name", ErrValidation)
	}

	id, err := s.updateStrict(ctx, students.Name, coachID, coachHint, *when.Start, *when.End)
	if err != nil {
		return outcome, err
	}
	outcome.AppointmentID = id
	outcome.CoachID = coachID
	outcome.StartISO = isoOrEmpty(when.Start)
	outcome.EndISO = isoOrEmpty(when.End)
	outcome.StudentName = students.Name
	return outcome, nil
}

func (s *IngestService) expired(start time.Time) bool {
	return time.Since(start) > time.Duration(s.graceMinutes)*time.Minute
}

func (s *IngestService) publish(event LessonEvent) {
	if s.notifier != nil {
		s.notifier.PublishLesson(event)
	}
}

func isoOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
