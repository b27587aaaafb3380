package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
)

type stubLessonReader struct {
	lessons     []models.Appointment
	listErr     error
	byID        *models.Appointment
	getErr      error
	lastCoachID string
	lastID      string
}

func (s *stubLessonReader) ListByCoach(_ context.Context, coachID string) ([]models.Appointment, error) {
	s.lastCoachID = coachID
	return s.lessons, s.listErr
}

func (s *stubLessonReader) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	s.lastID = id
	return s.byID, s.getErr
}

func newLessonApp(reader *stubLessonReader, userID string) *fiber.App {
	app := fiber.New()
	handler := NewLessonHandler(reader)
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Get("/api/v1/lessons", handler.ListLessons)
	app.Get("/api/v1/lessons/:id", handler.GetLesson)
	return app
}

func TestListLessonsScopedToCoach(t *testing.T) {
	reader := &stubLessonReader{lessons: []models.Appointment{{ID: "appt-1", CoachID: "7"}}}
	app := newLessonApp(reader, "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/lessons", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if reader.lastCoachID != "7" {
		t.Fatalf("queried coach %q, want 7", reader.lastCoachID)
	}
}

func TestListLessonsWithoutIdentity(t *testing.T) {
	app := newLessonApp(&stubLessonReader{}, "")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/lessons", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGetLessonHidesOtherCoachesLessons(t *testing.T) {
	reader := &stubLessonReader{byID: &models.Appointment{ID: "appt-1", CoachID: "9"}}
	app := newLessonApp(reader, "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/lessons/appt-1", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for another coach's lesson", resp.StatusCode)
	}
}

func TestGetLessonNotFound(t *testing.T) {
	reader := &stubLessonReader{getErr: pgx.ErrNoRows}
	app := newLessonApp(reader, "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/lessons/missing", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetLessonOwned(t *testing.T) {
	reader := &stubLessonReader{byID: &models.Appointment{ID: "appt-1", CoachID: "7"}}
	app := newLessonApp(reader, "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/lessons/appt-1", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if reader.lastID != "appt-1" {
		t.Fatalf("looked up %q", reader.lastID)
	}
}
