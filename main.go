package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/app"
	"github.com/miaout11/forum-express-grading/internal/cache"
	"github.com/miaout11/forum-express-grading/internal/config"
	"github.com/miaout11/forum-express-grading/internal/database"
	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
	"github.com/miaout11/forum-express-grading/internal/services"
	"github.com/miaout11/forum-express-grading/pkg/logger"
	"github.com/miaout11/forum-express-grading/pkg/rabbitmq"
	"github.com/miaout11/forum-express-grading/pkg/storage"
)

// ActivityQueue is the queue the process consumes its own activity events from.
const ActivityQueue = "forum_activity_queue"

// defaultCategories are created on first start.
var defaultCategories = []string{"Chinese", "Japanese", "Italian", "Mexican", "Vegetarian", "American", "Steakhouse", "Cafe"}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET is the built-in placeholder; set a real secret before exposing this server")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn("sentry disabled", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// --- Database ---
	db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	if err := seed(ctx, db, cfg); err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}

	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		logger.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	deps := app.Dependencies{DB: db, Files: files, AccessLog: true}

	// --- RabbitMQ (optional) ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: services.ActivityExchange,
			Queue:    ActivityQueue,
		})
		if err != nil {
			logger.Warn("activity events disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			deps.Publisher = mqClient
			if err := mqClient.ConsumeActivityEvents(handleActivityEvent); err != nil {
				logger.Warn("failed to start activity consumer", zap.Error(err))
			}
		}
	}

	// --- Redis (optional) ---
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("top users cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			client.Close()
		} else {
			defer client.Close()
			deps.TopUsers = cache.NewTopUsers(client, cfg.TopUsersTTL)
		}
	}

	svc := app.NewServices(cfg, deps)
	server := app.New(cfg, svc, deps)

	// --- Start HTTP Server ---
	logger.Info("starting server", zap.String("port", cfg.AppPort))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Listen(cfg.AppPort); err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("error during fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

// seed creates the default categories and, when configured, the admin account.
// Running it again changes nothing.
func seed(ctx context.Context, db *gorm.DB, cfg config.Config) error {
	for _, name := range defaultCategories {
		category := models.Category{Name: name}
		err := db.WithContext(ctx).
			Where(models.Category{Name: name}).
			Attrs(models.Category{ID: uuid.New().String()}).
			FirstOrCreate(&category).Error
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}
	users := repositories.NewGORMUserRepository(db)
	count, err := users.CountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), services.PasswordCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{Name: "root", Email: email, Password: string(hashed), IsAdmin: true}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("seeded admin account", zap.String("email", email))
	return nil
}

// handleActivityEvent logs one consumed activity event.
func handleActivityEvent(msg amqp.Delivery) error {
	var event services.ActivityEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("malformed activity event: %w", err)
	}
	logger.Info("activity",
		zap.String("type", event.Type),
		zap.String("actor", event.ActorID),
		zap.String("target", event.TargetID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
