package repositories

import (
	"context"

	"github.com/miaout11/forum-express-grading/internal/models"
)

// RestaurantRepository defines the interface for restaurant data access.
type RestaurantRepository interface {
	// List returns restaurants with their category, newest first. An empty
	// categoryID matches every category.
	List(ctx context.Context, categoryID string) ([]models.Restaurant, error)
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	// GetDetail loads the restaurant with its category and comments (with authors).
	GetDetail(ctx context.Context, id string) (*models.Restaurant, error)
	Create(ctx context.Context, restaurant *models.Restaurant) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}
