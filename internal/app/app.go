package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/config"
	"github.com/miaout11/forum-express-grading/internal/handlers"
	"github.com/miaout11/forum-express-grading/internal/middleware"
	"github.com/miaout11/forum-express-grading/internal/repositories"
	"github.com/miaout11/forum-express-grading/internal/services"
)

// Dependencies are the external stores the app is built on. Publisher and
// TopUsers may be nil.
type Dependencies struct {
	DB        *gorm.DB
	Files     services.FileStore
	Publisher services.EventPublisher
	TopUsers  services.TopUsersCache
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// Services groups the application services, exposed for seeding and tests.
type Services struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Relations   *services.RelationService
	Restaurants *services.RestaurantService
	Comments    *services.CommentService
}

// NewServices wires repositories into services.
func NewServices(cfg config.Config, deps Dependencies) *Services {
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	restaurantRepo := repositories.NewGORMRestaurantRepository(deps.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(deps.DB)
	commentRepo := repositories.NewGORMCommentRepository(deps.DB)
	favoriteRepo := repositories.NewGORMFavoriteRepository(deps.DB)
	likeRepo := repositories.NewGORMLikeRepository(deps.DB)
	followRepo := repositories.NewGORMFollowshipRepository(deps.DB)

	return &Services{
		Auth:        services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, deps.Publisher, deps.TopUsers),
		Users:       services.NewUserService(userRepo, commentRepo, followRepo, deps.Files, deps.TopUsers, deps.Publisher),
		Relations:   services.NewRelationService(userRepo, restaurantRepo, favoriteRepo, likeRepo, followRepo, deps.TopUsers, deps.Publisher),
		Restaurants: services.NewRestaurantService(restaurantRepo, categoryRepo, favoriteRepo, likeRepo, deps.Files, deps.Publisher),
		Comments:    services.NewCommentService(commentRepo, restaurantRepo, deps.Publisher),
	}
}

// New assembles the fiber app: public routes first, then everything behind
// the session check.
func New(cfg config.Config, svc *Services, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(middleware.Flash())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Static("/upload", cfg.UploadDir, fiber.Static{
		ModifyResponse: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
			c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'none'; sandbox")
			return nil
		},
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/restaurants")
	})

	var limiter fiber.Handler
	if cfg.SigninMax > 0 && cfg.SigninWindow > 0 {
		limiter = middleware.SigninLimiter(cfg.SigninMax, cfg.SigninWindow)
	}
	handlers.NewAuthHandler(svc.Auth, limiter).RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(svc.Auth))
	handlers.NewRestaurantHandler(svc.Restaurants, svc.Comments).RegisterRoutes(protected)
	handlers.NewUserHandler(svc.Users).RegisterRoutes(protected)
	handlers.NewRelationHandler(svc.Relations).RegisterRoutes(protected)
	handlers.NewAdminHandler(svc.Restaurants).RegisterRoutes(protected)

	return app
}
