package storage

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/photos", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Kind     string `json:"kind"`
			TargetID string `json:"target_id"`
			FileName string `json:"file_name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Kind != KindProfile && body.Kind != KindDog {
			return fiber.NewError(fiber.StatusBadRequest, "kind must be profile or dog")
		}
		if body.Kind == KindDog && body.TargetID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "target_id required for dog photos")
		}
		userID, _ := c.Locals("user_id").(string)

		id, url, err := svc.SavePhoto(c.Context(), userID, body.Kind, body.TargetID, body.FileName)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "url": url})
	})
}
