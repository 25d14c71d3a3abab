package repositories

import (
	"context"

	"github.com/miaout11/forum-express-grading/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetProfile loads the user with favorited restaurants, followers and followings.
	GetProfile(ctx context.Context, id string) (*models.User, error)
	ListWithFollowers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id, name, image string) error
	CountByEmail(ctx context.Context, email string) (int64, error)
}
