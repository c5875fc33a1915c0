package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"signdesk/internal/http/middleware"
	"signdesk/internal/service"
)

// requesterFromCtx reads the authenticated identity stored by the auth middleware.
func requesterFromCtx(c *fiber.Ctx) (id, email string) {
	id, _ = c.Locals(middleware.UserIDLocalKey).(string)
	email, _ = c.Locals(middleware.UserEmailLocalKey).(string)
	return id, email
}

// ListDocuments returns the requester's own documents with limit & offset.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		requesterID, _ := requesterFromCtx(c)
		res, err := svc.List(c.UserContext(), requesterID, limit, offset)
		if err != nil {
			log.Printf("list documents failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// UploadDocument accepts a multipart PDF upload with a title field.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := c.FormValue("title")

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
		requesterID, _ := requesterFromCtx(c)

		doc, err := svc.Upload(c.UserContext(), requesterID, title, f, fh.Filename, ct, fh.Size)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTitleRequired):
				return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
			case errors.Is(err, service.ErrNotPDF):
				return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_TYPE", "only PDF uploads are accepted")
			}
			log.Printf("upload failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns a single document the requester may see. A missing
// document and an inaccessible one respond identically.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		requesterID, requesterEmail := requesterFromCtx(c)
		doc, err := svc.Get(c.UserContext(), id, requesterID, requesterEmail)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			}
			log.Printf("get document failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes an owned document and its stored objects.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		requesterID, _ := requesterFromCtx(c)
		if err := svc.Delete(c.UserContext(), id, requesterID); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			}
			log.Printf("delete document failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CompletionStatus reports signature progress and finalization state for a
// document the requester may see.
func CompletionStatus(svc service.StatusService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		requesterID, requesterEmail := requesterFromCtx(c)
		payload, err := svc.CompletionStatus(c.UserContext(), id, requesterID, requesterEmail)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			}
			log.Printf("completion status failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(payload)
	}
}
