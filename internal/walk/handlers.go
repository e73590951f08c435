package walk

import (
	"errors"

	"github.com/TonniAndreev/doteworld-sub001/internal/paws"

	"github.com/gofiber/fiber/v2"
)

func sessionError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotActive):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNotSessionOwner):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			DogID string `json:"dog_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.DogID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "dog_id required")
		}
		userID, _ := c.Locals("user_id").(string)

		session, err := svc.Start(c.Context(), userID, req.DogID)
		if err != nil {
			if errors.Is(err, paws.ErrInsufficientPaws) {
				return fiber.NewError(fiber.StatusPaymentRequired, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	})

	r.Post("/:id/samples", authMiddleware, func(c *fiber.Ctx) error {
		var sample Sample
		if err := c.BodyParser(&sample); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)
		accepted, err := svc.AddSample(c.Context(), c.Params("id"), userID, sample)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(fiber.Map{"accepted": accepted})
	})

	r.Post("/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		session, err := svc.Stop(c.Context(), c.Params("id"), userID)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(session)
	})

	r.Get("/:id/summary", func(c *fiber.Ctx) error {
		summary, err := svc.Summary(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(summary)
	})

	r.Get("/:id/points", func(c *fiber.Ctx) error {
		points, err := svc.Points(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(points)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		sessions, err := svc.ListForUser(c.Context(), userID, c.QueryInt("limit"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sessions)
	})
}
