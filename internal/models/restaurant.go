package models

import "time"

// Category groups restaurants by cuisine.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Restaurant is a reviewable venue.
type Restaurant struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Tel          string    `json:"tel" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Address      string    `json:"address" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	OpeningHours string    `json:"openingHours" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Description  string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Image        string    `json:"image" gorm:"type:varchar(255)"`
	CategoryID   *string   `json:"categoryId" gorm:"type:varchar(36);index"`
	Category     *Category `json:"category,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Comments []Comment `json:"comments,omitempty"`
}

// Comment is a user's review text on a restaurant.
type Comment struct {
	ID           string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Text         string      `json:"text" gorm:"type:text;not null"`
	UserID       string      `json:"userId" gorm:"type:varchar(36);not null;index"`
	RestaurantID string      `json:"restaurantId" gorm:"type:varchar(36);not null;index"`
	User         *User       `json:"user,omitempty"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
