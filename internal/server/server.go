package server

import (
	"github.com/TonniAndreev/doteworld-sub001/internal/ads"
	"github.com/TonniAndreev/doteworld-sub001/internal/auth"
	"github.com/TonniAndreev/doteworld-sub001/internal/config"
	"github.com/TonniAndreev/doteworld-sub001/internal/dog"
	"github.com/TonniAndreev/doteworld-sub001/internal/notification"
	"github.com/TonniAndreev/doteworld-sub001/internal/paws"
	"github.com/TonniAndreev/doteworld-sub001/internal/profile"
	"github.com/TonniAndreev/doteworld-sub001/internal/storage"
	"github.com/TonniAndreev/doteworld-sub001/internal/stream"
	"github.com/TonniAndreev/doteworld-sub001/internal/subscription"
	"github.com/TonniAndreev/doteworld-sub001/internal/territory"
	"github.com/TonniAndreev/doteworld-sub001/internal/walk"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	notifications := notification.NewService(s.DB, s.Stream)
	pawLedger := paws.NewService(s.DB, s.Cfg)
	territories := territory.NewService(s.DB)
	profiles := profile.NewService(s.DB, notifications)
	dogs := dog.NewService(s.DB, notifications)
	walks := walk.NewService(s.DB, walk.NewTracker(s.Cfg.WalkSpeedLimitMps), pawLedger, territories, profiles, s.Stream)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	walk.RegisterRoutes(s.App.Group("/walks"), walks, jwtMiddleware)
	territory.RegisterRoutes(s.App.Group("/territory"), territories, jwtMiddleware)
	paws.RegisterRoutes(s.App.Group("/paws"), pawLedger, ads.New(s.Cfg), subscription.New(s.Cfg), jwtMiddleware)
	dog.RegisterRoutes(s.App.Group("/dogs"), dogs, jwtMiddleware)
	profile.RegisterRoutes(s.App.Group("/profiles"), profiles, jwtMiddleware)
	notification.RegisterRoutes(s.App.Group("/notifications"), notifications, jwtMiddleware)
	storage.RegisterRoutes(s.App.Group("/storage"), storage.NewService(s.DB, s.Stream, ""), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
