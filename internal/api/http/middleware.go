package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campushelp/helpdesk-service/internal/auth"
	"github.com/campushelp/helpdesk-service/internal/observability"
	"github.com/campushelp/helpdesk-service/internal/persistence"
	apperrors "github.com/campushelp/helpdesk-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling
// and logging. The request logger is outermost so the status it logs and
// counts is the one written by the error handler, not the pre-error 200.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
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
			if err == nil {
				return
			}

			// Router-level errors (unmatched routes, method not
			// allowed) arrive as *fiber.Error.
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				c.Status(fiberErr.Code)
				_ = c.JSON(fiber.Map{"error": fiber.Map{
					"code":    "HTTP_ERROR",
					"message": fiberErr.Message,
				}})
				err = nil
				return
			}

			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			response := fiber.Map{"error": fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}}
			if len(domainErr.Details) > 0 {
				response["error"].(fiber.Map)["details"] = domainErr.Details
			}
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed",
					zap.String("request_id", observability.RequestIDFromContext(c)),
					zap.Error(domainErr))
			}
			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(response)
			err = nil
		}()
		return c.Next()
	}
}

// TicketCreateRateLimit throttles ticket creation per principal with a
// Redis fixed-window counter. The limiter fails open when Redis is down so
// an outage never blocks submissions.
func TicketCreateRateLimit(r *persistence.Redis, perHour int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.Enabled() || perHour <= 0 {
			return c.Next()
		}
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return c.Next()
		}
		count, err := r.IncrWindow(c.UserContext(), "ratelimit:tickets:"+principal.UserID, time.Hour)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count > int64(perHour) {
			return apperrors.NewRateLimited("ticket creation limit reached, try again later")
		}
		return c.Next()
	}
}
