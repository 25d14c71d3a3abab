package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/models"
)

// GORMFavoriteRepository is a GORM implementation of FavoriteRepository.
type GORMFavoriteRepository struct {
	db *gorm.DB
}

// NewGORMFavoriteRepository creates a new instance of GORMFavoriteRepository.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMFavoriteRepository {
	return &GORMFavoriteRepository{db: db}
}

func (r *GORMFavoriteRepository) Exists(ctx context.Context, userID, restaurantID string) (bool, error) {
	return pairExists(ctx, r.db, &models.Favorite{}, "user_id = ? AND restaurant_id = ?", userID, restaurantID)
}

func (r *GORMFavoriteRepository) Create(ctx context.Context, userID, restaurantID string) error {
	err := r.db.WithContext(ctx).Create(&models.Favorite{UserID: userID, RestaurantID: restaurantID}).Error
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("favorite (%s, %s) %w", userID, restaurantID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	return nil
}

func (r *GORMFavoriteRepository) Delete(ctx context.Context, userID, restaurantID string) error {
	return deletePair(ctx, r.db, &models.Favorite{}, "favorite", "user_id = ? AND restaurant_id = ?", userID, restaurantID)
}

func (r *GORMFavoriteRepository) ListRestaurantIDs(ctx context.Context, userID string) ([]string, error) {
	return pluckIDs(ctx, r.db, &models.Favorite{}, "restaurant_id", "user_id = ?", userID)
}

// GORMLikeRepository is a GORM implementation of LikeRepository.
type GORMLikeRepository struct {
	db *gorm.DB
}

// NewGORMLikeRepository creates a new instance of GORMLikeRepository.
func NewGORMLikeRepository(db *gorm.DB) *GORMLikeRepository {
	return &GORMLikeRepository{db: db}
}

func (r *GORMLikeRepository) Exists(ctx context.Context, userID, restaurantID string) (bool, error) {
	return pairExists(ctx, r.db, &models.Like{}, "user_id = ? AND restaurant_id = ?", userID, restaurantID)
}

func (r *GORMLikeRepository) Create(ctx context.Context, userID, restaurantID string) error {
	err := r.db.WithContext(ctx).Create(&models.Like{UserID: userID, RestaurantID: restaurantID}).Error
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("like (%s, %s) %w", userID, restaurantID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *GORMLikeRepository) Delete(ctx context.Context, userID, restaurantID string) error {
	return deletePair(ctx, r.db, &models.Like{}, "like", "user_id = ? AND restaurant_id = ?", userID, restaurantID)
}

func (r *GORMLikeRepository) ListRestaurantIDs(ctx context.Context, userID string) ([]string, error) {
	return pluckIDs(ctx, r.db, &models.Like{}, "restaurant_id", "user_id = ?", userID)
}

// GORMFollowshipRepository is a GORM implementation of FollowshipRepository.
type GORMFollowshipRepository struct {
	db *gorm.DB
}

// NewGORMFollowshipRepository creates a new instance of GORMFollowshipRepository.
func NewGORMFollowshipRepository(db *gorm.DB) *GORMFollowshipRepository {
	return &GORMFollowshipRepository{db: db}
}

func (r *GORMFollowshipRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	return pairExists(ctx, r.db, &models.Followship{}, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *GORMFollowshipRepository) Create(ctx context.Context, followerID, followingID string) error {
	err := r.db.WithContext(ctx).Create(&models.Followship{FollowerID: followerID, FollowingID: followingID}).Error
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("followship (%s, %s) %w", followerID, followingID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create followship: %w", err)
	}
	return nil
}

func (r *GORMFollowshipRepository) Delete(ctx context.Context, followerID, followingID string) error {
	return deletePair(ctx, r.db, &models.Followship{}, "followship", "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *GORMFollowshipRepository) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	return pluckIDs(ctx, r.db, &models.Followship{}, "following_id", "follower_id = ?", followerID)
}

func pairExists(ctx context.Context, db *gorm.DB, model interface{}, where string, a, b string) (bool, error) {
	var cnt int64
	if err := db.WithContext(ctx).Model(model).Where(where, a, b).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func deletePair(ctx context.Context, db *gorm.DB, model interface{}, name, where string, a, b string) error {
	res := db.WithContext(ctx).Where(where, a, b).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s (%s, %s) %w", name, a, b, ErrNotFound)
	}
	return nil
}

func pluckIDs(ctx context.Context, db *gorm.DB, model interface{}, column, where string, arg string) ([]string, error) {
	var ids []string
	if err := db.WithContext(ctx).Model(model).Where(where, arg).Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
