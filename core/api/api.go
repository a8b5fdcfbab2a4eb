package api

import (
	"context"
	"fmt"

	"pwsi/core/apperr"
	"pwsi/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Content writes the success envelope.
func Content(c *fiber.Ctx, v any) error {
	return c.JSON(fiber.Map{"content": v})
}

// Fail writes the error envelope with the status mapped from err.
// Server-side failures are logged, client errors only at debug level.
func Fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	status := apperr.Status(err)
	l = logger.WithRayID(l, c)
	if status >= fiber.StatusInternalServerError {
		l.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"detail": "internal error"})
	}
	l.Debug("Request rejected", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"detail": err.Error()})
}

// Parse decodes the JSON body into v.
func Parse(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), apperr.ErrValidation)
	}
	return nil
}

// Info wraps per-item results the way update and delete answer.
func Info(kind string, v any) fiber.Map {
	return fiber.Map{"status": kind + " info", "info": v}
}

// Batch decodes a list body, runs fn and answers with its result.
func Batch[T any, R any](c *fiber.Ctx, l *zap.Logger, fn func(ctx context.Context, items []T) (R, error)) error {
	return batch(c, l, fn, fiber.StatusOK, func(r R) any { return r })
}

// Add answers 201 with the per-item results.
func Add[T any, R any](c *fiber.Ctx, l *zap.Logger, fn func(ctx context.Context, items []T) (R, error)) error {
	return batch(c, l, fn, fiber.StatusCreated, func(r R) any { return r })
}

// Update answers with the per-item update results.
func Update[T any](c *fiber.Ctx, l *zap.Logger, fn func(ctx context.Context, items []T) ([]string, error)) error {
	return batch(c, l, fn, fiber.StatusOK, func(r []string) any { return Info("Update", r) })
}

// Delete answers with the per-item delete results.
func Delete[T any](c *fiber.Ctx, l *zap.Logger, fn func(ctx context.Context, items []T) ([]bool, error)) error {
	return batch(c, l, fn, fiber.StatusOK, func(r []bool) any { return Info("Delete", r) })
}

// Reset runs fn and answers with message.
func Reset(c *fiber.Ctx, l *zap.Logger, fn func(ctx context.Context) error, message string) error {
	if err := fn(c.Context()); err != nil {
		return Fail(c, l, err)
	}
	return Content(c, message)
}

func batch[T any, R any](c *fiber.Ctx, l *zap.Logger, fn func(ctx context.Context, items []T) (R, error), status int, wrap func(R) any) error {
	var items []T
	if err := Parse(c, &items); err != nil {
		return Fail(c, l, err)
	}
	res, err := fn(c.Context(), items)
	if err != nil {
		return Fail(c, l, err)
	}
	return c.Status(status).JSON(fiber.Map{"content": wrap(res)})
}
