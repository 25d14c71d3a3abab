package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/models"
)

// GORMRestaurantRepository is a GORM implementation of RestaurantRepository.
type GORMRestaurantRepository struct {
	db *gorm.DB
}

// NewGORMRestaurantRepository creates a new instance of GORMRestaurantRepository.
func NewGORMRestaurantRepository(db *gorm.DB) *GORMRestaurantRepository {
	return &GORMRestaurantRepository{db: db}
}

func (r *GORMRestaurantRepository) List(ctx context.Context, categoryID string) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	q := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	if err := q.Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

func (r *GORMRestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("restaurant with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get restaurant by ID %s: %w", id, err)
	}
	return &restaurant, nil
}

func (r *GORMRestaurantRepository) GetDetail(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Comments.User").
		First(&restaurant, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("restaurant with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get restaurant detail %s: %w", id, err)
	}
	return &restaurant, nil
}

func (r *GORMRestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Category", "Comments").Create(restaurant).Error; err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("category with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by ID %s: %w", id, err)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("category %s %w", category.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}
