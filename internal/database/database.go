package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/miaout11/forum-express-grading/internal/models"
)

// Options selects the database backend.
type Options struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
	LogSQL bool
}

// Open connects to the configured database. Driver errors are translated so
// that unique and primary key violations surface as gorm.ErrDuplicatedKey.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if !opts.LogSQL {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		// sqlite serializes writers; a single connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate registers the custom join tables and migrates every model.
func Migrate(db *gorm.DB) error {
	joins := []struct {
		field string
		model interface{}
	}{
		{"FavoritedRestaurants", &models.Favorite{}},
		{"LikedRestaurants", &models.Like{}},
		{"Followers", &models.Followship{}},
		{"Followings", &models.Followship{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(&models.User{}, j.field, j.model); err != nil {
			return fmt.Errorf("setup join table %s failed: %w", j.field, err)
		}
	}

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Restaurant{},
		&models.User{},
		&models.Comment{},
		&models.Favorite{},
		&models.Like{},
		&models.Followship{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// MemoryDSN returns a DSN for a private, shared-cache in-memory sqlite database.
func MemoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
}
