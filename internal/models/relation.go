package models

import "time"

// Favorite records that a user favorited a restaurant. The composite primary
// key allows at most one row per pair.
type Favorite struct {
	UserID       string    `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	RestaurantID string    `json:"restaurantId" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Favorite) TableName() string { return "favorites" }

// Like records that a user liked a restaurant.
type Like struct {
	UserID       string    `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	RestaurantID string    `json:"restaurantId" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }

// Followship is a directional edge: FollowerID follows FollowingID.
type Followship struct {
	FollowerID  string    `json:"followerId" gorm:"primaryKey;type:varchar(36)"`
	FollowingID string    `json:"followingId" gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Followship) TableName() string { return "followships" }
