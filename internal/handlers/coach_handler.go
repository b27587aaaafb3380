package handlers

import (
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/linqiu-w/SwimCoachBack/internal/repository"
	"github.com/linqiu-w/SwimCoachBack/internal/services"
	lessonws "github.com/linqiu-w/SwimCoachBack/internal/websocket"
	"github.com/linqiu-w/SwimCoachBack/pkg/utils"
)

type CoachHandler struct {
	coachRepo    *repository.CoachRepository
	coachService *services.CoachService
	hub          *lessonws.Hub
	jwtSecret    string
}

func NewCoachHandler(
	coachRepo *repository.CoachRepository,
	coachService *services.CoachService,
	hub *lessonws.Hub,
	jwtSecret string,
) *CoachHandler {
	return &CoachHandler{
		coachRepo:    coachRepo,
		coachService: coachService,
		hub:          hub,
		jwtSecret:    jwtSecret,
	}
}

func (h *CoachHandler) GetProfile(c *fiber.Ctx) error {
	coachID, ok := coachIDFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	coach, err := h.coachRepo.GetByID(c.Context(), coachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load coach"})
	}
	return c.JSON(fiber.Map{"coach": coach})
}

type addAliasesRequest struct {
	Aliases []string `json:"aliases"`
}

// AddAliases lets an operator teach the resolver new spellings of a coach's
// name ("CoachAmber", "Amber L", ...) without touching the database.
func (h *CoachHandler) AddAliases(c *fiber.Ctx) error {
	coachID, ok := coachIDFromLocals(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req addAliasesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.Aliases) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "aliases must not be empty"})
	}

	coach, err := h.coachService.AddAliases(c.Context(), coachID, req.Aliases)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update aliases"})
	}
	return c.JSON(fiber.Map{"coach": coach})
}

// WebSocketAuth authenticates the lesson feed upgrade from a query-string
// token (mobile websocket clients cannot set headers).
func (h *CoachHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *CoachHandler) HandleWebSocket(conn *websocket.Conn) {
	coachID, _ := conn.Locals("user_id").(string)
	client := lessonws.NewClient(h.hub, conn, coachID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *CoachHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	return utils.ValidateToken(tokenString, h.jwtSecret)
}
