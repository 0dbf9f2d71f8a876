package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"invproc/internal/service"
)

// AnalyticsOverview returns processed/pending/error counts plus how many
// documents were touched today.
func AnalyticsOverview(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Overview(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// DocumentsPerDay returns per-day document totals, optionally bounded by
// from/to query parameters (YYYY-MM-DD).
func DocumentsPerDay(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var from, to *time.Time
		if v := c.Query("from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FROM", "invalid from date")
			}
			from = &t
		}
		if v := c.Query("to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_TO", "invalid to date")
			}
			to = &t
		}
		items, err := svc.DocumentsPerDay(c.UserContext(), from, to)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"items": items})
	}
}
