package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/observability"
	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

// ErrorHandler renders errors raised outside the middleware chain, such as
// oversized request bodies rejected by the server.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		writeError(c, err, logger, metrics)
		return nil
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				writeError(c, err, logger, metrics)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics) {
	domainErr := toDomainError(err)
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

	response := fiber.Map{"error": fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}}
	if len(domainErr.Details) > 0 {
		response["error"].(fiber.Map)["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed", zap.Error(domainErr))
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(response)
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError(fiberErrorCode(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func fiberErrorCode(status int) string {
	switch {
	case status == http.StatusNotFound:
		return apperrors.CodeNotFound
	case status == http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return apperrors.CodeForbidden
	case status == http.StatusRequestEntityTooLarge:
		return apperrors.CodePayloadTooLarge
	case status == http.StatusUnsupportedMediaType:
		return apperrors.CodeUnsupportedFileType
	case status < 500:
		return apperrors.CodeValidation
	default:
		return apperrors.CodeInternal
	}
}
