package server

import (
	"errors"
	"time"

	apperr "github.com/AbdulWasayUl/go-country-currency/internal/errors"
	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/internal/storage"
	"github.com/AbdulWasayUl/go-country-currency/services/country"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"

// New builds the HTTP application serving the country API.
func New(svc *country.Service, artifacts storage.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(requestLogger)

	NewHandler(svc, artifacts).RegisterRoutes(app)
	return app
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		var ae *apperr.AppError
		var fe *fiber.Error
		switch {
		case errors.As(err, &ae):
			status = ae.Status
		case errors.As(err, &fe):
			status = fe.Code
		default:
			status = fiber.StatusInternalServerError
		}
	}

	fields := []zap.Field{
		zap.String("request_id", RequestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	}
	if status >= fiber.StatusInternalServerError {
		logger.L().Error("Request failed", append(fields, zap.Error(err))...)
	} else {
		logger.L().Info("Request handled", fields...)
	}
	return err
}

// RequestID returns the id assigned to the current request.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ErrorHandler renders AppErrors as {error, details}. Anything unexpected
// becomes a bare 500 and the cause is only logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if ae, ok := apperr.As(err); ok {
		if ae.Code == apperr.ErrInternal {
			logger.L().Error("Internal error", zap.String("request_id", RequestID(c)), zap.Error(ae.Err))
		}
		body := fiber.Map{"error": ae.Message}
		if ae.Details != nil {
			body["details"] = ae.Details
		}
		return c.Status(ae.Status).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	logger.L().Error("Unhandled error", zap.String("request_id", RequestID(c)), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
