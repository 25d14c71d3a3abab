package models

import "time"

// User represents a forum member.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Image     string    `json:"image" gorm:"type:varchar(255)"`
	IsAdmin   bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FavoritedRestaurants []Restaurant `json:"favoritedRestaurants,omitempty" gorm:"many2many:favorites"`
	LikedRestaurants     []Restaurant `json:"likedRestaurants,omitempty" gorm:"many2many:likes"`
	// Followers are the users following this one.
	Followers  []User    `json:"followers,omitempty" gorm:"many2many:followships;joinForeignKey:FollowingID;joinReferences:FollowerID"`
	Followings []User    `json:"followings,omitempty" gorm:"many2many:followships;joinForeignKey:FollowerID;joinReferences:FollowingID"`
	Comments   []Comment `json:"comments,omitempty"`
}
