package paws

import (
	"errors"

	"github.com/TonniAndreev/doteworld-sub001/internal/ads"
	"github.com/TonniAndreev/doteworld-sub001/internal/subscription"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, adProvider ads.Provider, subProvider subscription.Provider, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		balance, err := svc.Balance(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(balance)
	})

	r.Post("/ad-reward", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		if err := adProvider.LoadRewarded(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "ad unavailable")
		}
		reward, err := adProvider.ShowRewarded(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "ad unavailable")
		}

		if err := svc.CreditAdWatch(c.Context(), userID); err != nil {
			if errors.Is(err, ErrDailyAdCap) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		balance, err := svc.Balance(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"reward": reward, "balance": balance})
	})

	r.Post("/subscription/sync", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		info, err := subProvider.CustomerInfo(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if err := svc.SetSubscribed(c.Context(), userID, info.Active); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(info)
	})
}
