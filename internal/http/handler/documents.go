package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"invproc/internal/model"
	"invproc/internal/service"
	"invproc/internal/storage"
)

// ListDocuments lists the caller's documents, optionally filtered by status.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := model.DocStatus(c.Query("status"))
		res, err := svc.List(c.UserContext(), ownerID(c), status)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single document by id.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// DownloadDocument returns a time-limited URL for the stored invoice file.
func DownloadDocument(svc service.DocumentService, store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if doc.StoragePath == "" {
			return writeError(c, fiber.StatusNotFound, "FILE_NOT_AVAILABLE", "no stored file for document")
		}
		url, err := store.PresignGet(c.UserContext(), doc.StoragePath, 15*time.Minute)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// PatchDocument updates reviewable extracted fields.
func PatchDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields service.PatchFields
		if err := c.BodyParser(&fields); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.Patch(c.UserContext(), c.Params("id"), fields)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// ApproveDocument marks the document Processed and clears any error reason.
func ApproveDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Approve(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// RejectDocument marks the document Error with the given reason.
func RejectDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Reason string `json:"reason"`
		}
		// An empty body is fine; the service falls back to a default reason.
		_ = c.BodyParser(&body)
		doc, err := svc.Reject(c.UserContext(), c.Params("id"), body.Reason)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}
