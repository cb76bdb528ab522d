// Package api exposes the tracker over HTTP/JSON.
package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/abhisek/grindlog/internal/tracker"
)

// Server is the HTTP front end of a tracker.Service.
type Server struct {
	app *fiber.App
	svc *tracker.Service
	log *zap.Logger
}

// New builds the fiber app and registers every route. Routes under /v1
// require a bearer token signed with secret.
func New(svc *tracker.Service, log *zap.Logger, secret string) (*Server, error) {
	if secret == "" {
		return nil, errors.New("auth.jwt_secret must be set to serve the API")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, log: log.Named("api")}

	s.app = fiber.New(fiber.Config{
		AppName:               "grindlog",
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(RequestID())
	s.app.Use(Logging(s.log))
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))

	s.routes(Auth(secret))
	return s, nil
}

func (s *Server) routes(auth fiber.Handler) {
	s.app.Get("/healthz", s.health)

	v1 := s.app.Group("/v1", auth)

	progress := v1.Group("/progress")
	progress.Get("/", s.getProgress)
	progress.Post("/", s.createProgress)
	progress.Get("/stats", s.stats)
	progress.Get("/days/:date", s.day)
	progress.Put("/days/:date/problems/:number", s.updateProblem)
	progress.Get("/week", s.week)
	progress.Get("/month", s.month)
	progress.Get("/export", s.export)
	progress.Post("/import", s.importSnapshot)
	progress.Post("/repair", s.repair)
	progress.Get("/activity", s.activity)

	v1.Get("/themes/today", s.themeToday)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return Error(c, status, err)
}
