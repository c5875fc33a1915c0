package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"signdesk/internal/service"
)

type createInvitationsRequest struct {
	Recipients []service.Recipient `json:"recipients"`
}

type signRequest struct {
	SignerName string `json:"signer_name"`
}

// CreateInvitations invites recipients to sign an owned document.
func CreateInvitations(svc service.InvitationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req createInvitationsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		requesterID, _ := requesterFromCtx(c)
		invs, err := svc.Invite(c.UserContext(), id, requesterID, req.Recipients)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNoRecipients):
				return writeError(c, fiber.StatusBadRequest, "RECIPIENTS_REQUIRED", "at least one named recipient is required")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			case errors.Is(err, service.ErrAlreadyCompleted):
				return writeError(c, fiber.StatusBadRequest, "ALREADY_COMPLETED", "document is already completed")
			}
			log.Printf("create invitations failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(invs)
	}
}

// SignInvitation completes an invitation through its emailed link. The link
// carries the expiry and an HMAC signature as query parameters.
func SignInvitation(svc service.InvitationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req signRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}

		inv, err := svc.Sign(c.UserContext(), id, req.SignerName, c.Query("expires"), c.Query("signature"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidSignLink):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			case errors.Is(err, service.ErrInvitationExpired):
				return writeError(c, fiber.StatusGone, "INVITE_EXPIRED", "invitation has expired")
			case errors.Is(err, service.ErrAlreadySigned):
				return writeError(c, fiber.StatusGone, "ALREADY_SIGNED", "invitation is already signed")
			}
			log.Printf("sign invitation failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(inv)
	}
}
