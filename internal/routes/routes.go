package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linqiu-w/SwimCoachBack/internal/config"
	"github.com/linqiu-w/SwimCoachBack/internal/handlers"
	"github.com/linqiu-w/SwimCoachBack/internal/middleware"
	"github.com/linqiu-w/SwimCoachBack/internal/repository"
	"github.com/linqiu-w/SwimCoachBack/internal/services"
	lessonws "github.com/linqiu-w/SwimCoachBack/internal/websocket"
	"github.com/sirupsen/logrus"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *logrus.Logger) {
	userRepo := repository.NewUserRepository(db)
	coachRepo := repository.NewCoachRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	ingestionRepo := repository.NewIngestionRepository(db)

	hub := lessonws.NewHub()
	go hub.Run()

	coachService := services.NewCoachService(coachRepo)
	resolver := services.NewCoachResolver(coachRepo, logger)
	ingestService := services.NewIngestService(
		appointmentRepo,
		ingestionRepo,
		resolver,
		hub,
		logger,
		cfg.BusinessLocation(),
		cfg.PastGraceMinutes,
		cfg.UnknownActionPolicy,
	)

	authHandler := handlers.NewAuthHandler(userRepo, coachService, cfg.JWTSecret)
	webhookHandler := handlers.NewWebhookHandler(ingestService, cfg.WebhookSecret, logger)
	lessonHandler := handlers.NewLessonHandler(appointmentRepo)
	coachHandler := handlers.NewCoachHandler(coachRepo, coachService, hub, cfg.JWTSecret)

	// The webhook authenticates by signature, not by JWT.
	app.Post("/webhook/email", webhookHandler.IngestEmail)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret, "coach"))

	coaches := authProtected.Group("/coaches")
	coaches.Get("/me", coachHandler.GetProfile)
	coaches.Put("/aliases", coachHandler.AddAliases)

	lessons := authProtected.Group("/lessons")
	lessons.Get("", lessonHandler.ListLessons)
	lessons.Get("/:id", lessonHandler.GetLesson)

	api.Use("/v1/lessons-feed", coachHandler.WebSocketAuth)
	api.Get("/v1/lessons-feed", websocket.New(coachHandler.HandleWebSocket))
}
