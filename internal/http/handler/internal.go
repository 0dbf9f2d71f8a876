package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"invproc/internal/event"
	"invproc/internal/queue"
	"invproc/internal/service"
)

// InternalEvents is the authenticated ingress for worker processing events.
// The shared secret is compared in constant time. Submissions missing
// ownerId or event are rejected; unknown event kinds are accepted and
// ignored so workers can roll out new kinds ahead of the gateway.
func InternalEvents(secret string, svc service.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(event.SecretHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid internal secret")
		}

		var env event.Envelope
		if err := c.BodyParser(&env); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if env.OwnerID == "" || env.Event == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", "missing ownerId or event")
		}

		svc.Apply(env)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"ok": true})
	}
}

// DeadLetters lists jobs that exhausted their retry budget. Shares the
// internal-secret authentication with the event ingress; this is an
// operator surface, not a user one.
func DeadLetters(secret string, maint queue.Maintainer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(event.SecretHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid internal secret")
		}
		jobs, err := maint.DeadLettered(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"items": jobs, "total": len(jobs)})
	}
}
