package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
)

// RestaurantCard is a restaurant listing entry with the caller's flags.
type RestaurantCard struct {
	models.Restaurant
	IsFavorited bool `json:"isFavorited"`
	IsLiked     bool `json:"isLiked"`
}

// RestaurantInput carries the admin create-restaurant form.
type RestaurantInput struct {
	Name         string `json:"name" form:"name"`
	Tel          string `json:"tel" form:"tel"`
	Address      string `json:"address" form:"address"`
	OpeningHours string `json:"openingHours" form:"openingHours"`
	Description  string `json:"description" form:"description"`
	CategoryID   string `json:"categoryId" form:"categoryId"`
}

// RestaurantService lists restaurants and lets admins create them.
type RestaurantService struct {
	restaurantRepo repositories.RestaurantRepository
	categoryRepo   repositories.CategoryRepository
	favoriteRepo   repositories.FavoriteRepository
	likeRepo       repositories.LikeRepository
	files          FileStore
	publisher      EventPublisher
	validate       *validator.Validate
}

// NewRestaurantService creates a new RestaurantService. publisher may be nil.
func NewRestaurantService(
	restaurantRepo repositories.RestaurantRepository,
	categoryRepo repositories.CategoryRepository,
	favoriteRepo repositories.FavoriteRepository,
	likeRepo repositories.LikeRepository,
	files FileStore,
	publisher EventPublisher,
) *RestaurantService {
	return &RestaurantService{
		restaurantRepo: restaurantRepo,
		categoryRepo:   categoryRepo,
		favoriteRepo:   favoriteRepo,
		likeRepo:       likeRepo,
		files:          files,
		publisher:      publisher,
		validate:       validator.New(),
	}
}

// ListRestaurants returns restaurants, optionally of one category, flagged for callerID.
func (s *RestaurantService) ListRestaurants(ctx context.Context, callerID, categoryID string) ([]RestaurantCard, error) {
	var (
		restaurants []models.Restaurant
		favorited   []string
		liked       []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurants, err = s.restaurantRepo.List(gctx, categoryID)
		return err
	})
	g.Go(func() error {
		var err error
		favorited, err = s.favoriteRepo.ListRestaurantIDs(gctx, callerID)
		return err
	})
	g.Go(func() error {
		var err error
		liked, err = s.likeRepo.ListRestaurantIDs(gctx, callerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	favSet, likeSet := toSet(favorited), toSet(liked)
	cards := make([]RestaurantCard, len(restaurants))
	for i, r := range restaurants {
		_, fav := favSet[r.ID]
		_, like := likeSet[r.ID]
		cards[i] = RestaurantCard{Restaurant: r, IsFavorited: fav, IsLiked: like}
	}
	return cards, nil
}

// GetRestaurant returns one restaurant with category and comments, flagged for callerID.
func (s *RestaurantService) GetRestaurant(ctx context.Context, restaurantID, callerID string) (*RestaurantCard, error) {
	var (
		restaurant *models.Restaurant
		fav, like  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurant, err = s.restaurantRepo.GetDetail(gctx, restaurantID)
		return err
	})
	g.Go(func() error {
		var err error
		fav, err = s.favoriteRepo.Exists(gctx, callerID, restaurantID)
		return err
	})
	g.Go(func() error {
		var err error
		like, err = s.likeRepo.Exists(gctx, callerID, restaurantID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Restaurant didn't exist!")
		}
		return nil, err
	}
	return &RestaurantCard{Restaurant: *restaurant, IsFavorited: fav, IsLiked: like}, nil
}

// ListCategories returns every category.
func (s *RestaurantService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

// ListAllRestaurants returns every restaurant for the admin listing.
func (s *RestaurantService) ListAllRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurantRepo.List(ctx, "")
}

// CreateRestaurant validates the admin form, stores the optional image and saves the restaurant.
func (s *RestaurantService) CreateRestaurant(ctx context.Context, adminID string, in RestaurantInput, image *Upload) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{
		Name:         strings.TrimSpace(in.Name),
		Tel:          strings.TrimSpace(in.Tel),
		Address:      strings.TrimSpace(in.Address),
		OpeningHours: strings.TrimSpace(in.OpeningHours),
		Description:  strings.TrimSpace(in.Description),
	}
	if restaurant.Name == "" {
		return nil, newError(ErrValidation, "Restaurant name is required!")
	}
	if err := s.validate.Struct(restaurant); err != nil {
		return nil, validationError(err)
	}

	if in.CategoryID != "" {
		if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, newError(ErrNotFound, "Category didn't exist!")
			}
			return nil, err
		}
		categoryID := in.CategoryID
		restaurant.CategoryID = &categoryID
	}

	if image != nil && s.files != nil {
		checked, err := checkImage(image)
		if err != nil {
			return nil, err
		}
		path, err := s.files.Save(ctx, checked.Filename, checked.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		restaurant.Image = path
	}

	if err := s.restaurantRepo.Create(ctx, restaurant); err != nil {
		if s.files != nil {
			discardUpload(ctx, s.files, restaurant.Image)
		}
		return nil, err
	}
	publishActivity(s.publisher, EventRestaurantAdded, adminID, restaurant.ID)
	return restaurant, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
