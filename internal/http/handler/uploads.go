package handler

import (
	"bufio"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"invproc/internal/service"
	"invproc/internal/sse"
)

// UploadDocument accepts a multipart upload (field name: file), stores the
// object and enqueues the processing job. The response carries the ids the
// client needs to correlate later push updates.
func UploadDocument(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		receipt, err := svc.Upload(c.UserContext(), ownerID(c), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(receipt)
	}
}

// StreamUpdates upgrades the request to a Server-Sent Events stream
// subscribed under the caller's owner key. The stream loop owns the
// connection: it unsubscribes on the first failed write or flush, or when
// the client goes away.
func StreamUpdates(registry *sse.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := ownerID(c)

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
		c.Set(fiber.HeaderConnection, "keep-alive")

		conn := registry.Subscribe(key)
		reqCtx := c.Context()

		reqCtx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer registry.Unsubscribe(key, conn)

			// Immediate comment frame so intermediaries flush headers.
			if _, err := w.WriteString(": connected\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case frame, ok := <-conn.Frames():
					if !ok {
						return
					}
					if _, err := w.Write(frame); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				case <-reqCtx.Done():
					return
				}
			}
		}))
		return nil
	}
}
