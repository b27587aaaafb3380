package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/linqiu-w/SwimCoachBack/internal/services"
	"github.com/linqiu-w/SwimCoachBack/internal/signature"
	"github.com/sirupsen/logrus"
)

type emailIngestor interface {
	Ingest(ctx context.Context, req services.IngestRequest) (*services.IngestOutcome, error)
}

// WebhookHandler terminates the booking platform's email-forward webhook.
type WebhookHandler struct {
	service emailIngestor
	secret  string
	logger  *logrus.Logger
}

func NewWebhookHandler(service emailIngestor, webhookSecret string, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, secret: webhookSecret, logger: logger}
}

type webhookRequest struct {
	Subject   string `json:"subject"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
	MessageID string `json:"messageId"`
	Date      string `json:"date"`
}

type webhookResponse struct {
	OK bool `json:"ok"`
	*services.IngestOutcome
}

// IngestEmail is POST /webhook/email. Signature verification runs before
// anything else; a rejected signature mutates no state.
func (h *WebhookHandler) IngestEmail(c *fiber.Ctx) error {
	var req webhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Invalid request body"})
	}

	if !signature.Verify(c.Get(signature.Header), req.MessageID, req.Date, h.secret) {
		h.logger.WithField("messageId", req.MessageID).Warn("webhook signature rejected")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Invalid signature"})
	}

	// The raw payload is persisted on the ingestion record; copy it out of
	// fiber's reusable buffer.
	raw := append([]byte(nil), c.Body()...)

	outcome, err := h.service.Ingest(c.Context(), services.IngestRequest{
		Subject:   req.Subject,
		Text:      req.Text,
		HTML:      req.HTML,
		MessageID: req.MessageID,
		Raw:       raw,
	})
	if err != nil {
		return h.mapIngestError(c, req.MessageID, err)
	}

	if outcome.Duplicate {
		return c.Status(fiber.StatusAlreadyReported).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	return c.JSON(webhookResponse{OK: true, IngestOutcome: outcome})
}

func (h *WebhookHandler) mapIngestError(c *fiber.Ctx, messageID string, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrUnknownAction),
		errors.Is(err, services.ErrCoachNotFound),
		errors.Is(err, services.ErrNoMatch),
		errors.Is(err, services.ErrAmbiguous):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
	default:
		h.logger.WithField("messageId", messageID).WithError(err).Error("webhook ingestion failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Internal server error"})
	}
}
