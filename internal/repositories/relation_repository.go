package repositories

import "context"

// FavoriteRepository defines the interface for the user/restaurant favorite relation.
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, restaurantID string) (bool, error)
	Create(ctx context.Context, userID, restaurantID string) error
	// Delete removes the pair, wrapping ErrNotFound when it did not exist.
	Delete(ctx context.Context, userID, restaurantID string) error
	ListRestaurantIDs(ctx context.Context, userID string) ([]string, error)
}

// LikeRepository defines the interface for the user/restaurant like relation.
type LikeRepository interface {
	Exists(ctx context.Context, userID, restaurantID string) (bool, error)
	Create(ctx context.Context, userID, restaurantID string) error
	Delete(ctx context.Context, userID, restaurantID string) error
	ListRestaurantIDs(ctx context.Context, userID string) ([]string, error)
}

// FollowshipRepository defines the interface for the directional follow relation.
type FollowshipRepository interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
}
