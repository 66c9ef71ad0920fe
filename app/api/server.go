package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ludo/app/config"
	"ludo/app/service/conversation"
	"ludo/app/service/notepad"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

const shutdownTimeout = 5 * time.Second

var _ do.Shutdownable = (*Server)(nil)

type Server struct {
	listen string
	app    *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](di)

	handlers := NewHandlers(
		do.MustInvoke[*conversation.Service](di),
		do.MustInvoke[*notepad.Service](di),
	)

	return NewServer(cfg.API.Listen, handlers), nil
}

func NewServer(listen string, handlers *Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "ludo",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handlers.RegisterRoutes(app.Group("/api"))

	return &Server{
		listen: listen,
		app:    app,
	}
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	slog.Info("HTTP API listening", "listen", s.listen)

	return s.app.Listen(s.listen)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("Request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
