package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/models"
)

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// FirstPerRestaurantByUser returns, for every restaurant userID commented
	// on, that user's earliest comment with the restaurant embedded.
	FirstPerRestaurantByUser(ctx context.Context, userID string) ([]models.Comment, error)
}

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{db: db}
}

func (r *GORMCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("User", "Restaurant").Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *GORMCommentRepository) FirstPerRestaurantByUser(ctx context.Context, userID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Restaurant").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of user %s: %w", userID, err)
	}

	seen := make(map[string]struct{}, len(comments))
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.RestaurantID]; ok {
			continue
		}
		seen[c.RestaurantID] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}
