package dog

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Dog
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		req.CreatedBy, _ = c.Locals("user_id").(string)
		d, err := svc.CreateDog(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		dogs, err := svc.ListForUser(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(dogs)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		d, err := svc.GetDog(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "dog not found")
		}
		return c.JSON(d)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Dog
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		d, err := svc.UpdateDog(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(d)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteDog(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/owners", func(c *fiber.Ctx) error {
		owners, err := svc.Owners(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(owners)
	})

	r.Post("/:id/invites", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			InviteeEmail string `json:"invitee_email"`
			Role         string `json:"role"`
		}
		if err := c.BodyParser(&body); err != nil || body.InviteeEmail == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invitee_email required")
		}
		userID, _ := c.Locals("user_id").(string)
		inv, err := svc.CreateInvite(c.Context(), c.Params("id"), userID, body.InviteeEmail, body.Role)
		if err != nil {
			if errors.Is(err, ErrNotOwner) {
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	})

	r.Get("/invites/pending", authMiddleware, func(c *fiber.Ctx) error {
		email := c.Query("email")
		if email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email required")
		}
		invites, err := svc.ListInvites(c.Context(), email)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(invites)
	})

	r.Post("/invites/:inviteID/accept", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		owner, err := svc.Accept(c.Context(), c.Params("inviteID"), userID)
		if err != nil {
			return inviteError(err)
		}
		return c.JSON(owner)
	})

	r.Post("/invites/:inviteID/decline", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Decline(c.Context(), c.Params("inviteID"), userID); err != nil {
			return inviteError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func inviteError(err error) error {
	switch {
	case errors.Is(err, ErrInviteNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInviteExpired):
		return fiber.NewError(fiber.StatusGone, err.Error())
	case errors.Is(err, ErrInviteClosed):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNotInvitee):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
