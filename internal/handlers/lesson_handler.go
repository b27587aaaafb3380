package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
)

type lessonReader interface {
	ListByCoach(ctx context.Context, coachID string) ([]models.Appointment, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
}

// LessonHandler serves the mobile calendar's list and detail views. A coach
// only ever sees their own appointments.
type LessonHandler struct {
	lessons lessonReader
}

func NewLessonHandler(lessons lessonReader) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	coachID, ok := coachIDFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	lessons, err := h.lessons.ListByCoach(c.Context(), coachID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load lessons"})
	}
	return c.JSON(fiber.Map{"lessons": lessons})
}

func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	coachID, ok := coachIDFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	lesson, err := h.lessons.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load lesson"})
	}
	if lesson.CoachID != coachID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	return c.JSON(fiber.Map{"lesson": lesson})
}

func coachIDFromLocals(c *fiber.Ctx) (string, bool) {
	raw, _ := c.Locals("user_id").(string)
	if raw == "" {
		return "", false
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return "", false
	}
	return raw, true
}
