package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// New builds the Fiber app with recovery, request ids, request logging and the handler's routes.
// A zero timeout leaves reads and writes unbounded.
func New(handler *Handler, log *zap.SugaredLogger, timeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           timeout,
		WriteTimeout:          timeout,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(log))

	handler.RegisterRoutes(app)
	return app
}
