package server

import (
	"errors"
	"log"

	"backend-postline/internal/about"
	"backend-postline/internal/auth"
	"backend-postline/internal/config"
	"backend-postline/internal/follow"
	"backend-postline/internal/media"
	"backend-postline/internal/pagecache"
	"backend-postline/internal/posts"
	"backend-postline/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		Views:        views.Engine(),
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Use(auth.CurrentUser(s.Cfg.SessionSecret))
	s.App.Static("/media", s.Cfg.MediaRoot)

	users := auth.NewService(s.Cfg.SessionSecret, s.DB)
	postSvc := posts.NewService(s.DB)
	followSvc := follow.NewService(s.DB)
	cache := pagecache.New(s.Redis, s.Cfg.IndexCacheDuration())
	store := media.NewStore(s.Cfg.MediaRoot)
	requireLogin := auth.RequireLogin()

	postHandlers := posts.NewHandlers(postSvc, followSvc, users, cache, store)

	auth.RegisterRoutes(s.App.Group("/auth"), users)
	about.RegisterRoutes(s.App.Group("/about"))
	postHandlers.RegisterRoutes(s.App, requireLogin)

	// Username wildcards go last; within them, follow/unfollow must precede
	// the post_id routes so /<username>/follow/ is not read as a post id.
	follow.RegisterRoutes(s.App, followSvc, users, requireLogin)
	postHandlers.RegisterProfileRoutes(s.App, requireLogin)
}

// ErrorHandler renders the generic not-found page for 404s and the generic
// error page for everything else.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code == fiber.StatusNotFound {
		if renderErr := c.Status(code).Render("misc/404", fiber.Map{"Path": c.Path()}); renderErr == nil {
			return nil
		}
		return c.Status(code).SendString("Not Found")
	}

	log.Printf("request failed: %s %s: %v", c.Method(), c.Path(), err)
	if renderErr := c.Status(code).Render("misc/500", fiber.Map{}); renderErr == nil {
		return nil
	}
	return c.Status(code).SendString("Internal Server Error")
}
