package services

import (
	"context"
	"errors"
	"strings"

	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
)

// CommentService posts comments on restaurants.
type CommentService struct {
	commentRepo    repositories.CommentRepository
	restaurantRepo repositories.RestaurantRepository
	publisher      EventPublisher
}

// NewCommentService creates a new CommentService. publisher may be nil.
func NewCommentService(commentRepo repositories.CommentRepository, restaurantRepo repositories.RestaurantRepository, publisher EventPublisher) *CommentService {
	return &CommentService{commentRepo: commentRepo, restaurantRepo: restaurantRepo, publisher: publisher}
}

// PostComment stores callerID's comment on restaurantID.
func (s *CommentService) PostComment(ctx context.Context, callerID, restaurantID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newError(ErrValidation, "Comment text is required!")
	}
	if _, err := s.restaurantRepo.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Restaurant didn't exist!")
		}
		return nil, err
	}

	comment := &models.Comment{Text: text, UserID: callerID, RestaurantID: restaurantID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	publishActivity(s.publisher, EventCommentPosted, callerID, restaurantID)
	return comment, nil
}
