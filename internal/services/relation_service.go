package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/miaout11/forum-express-grading/internal/repositories"
)

// RelationService toggles favorites, likes and followships for the caller.
type RelationService struct {
	userRepo       repositories.UserRepository
	restaurantRepo repositories.RestaurantRepository
	favoriteRepo   repositories.FavoriteRepository
	likeRepo       repositories.LikeRepository
	followRepo     repositories.FollowshipRepository
	topUsers       TopUsersCache
	publisher      EventPublisher
}

// NewRelationService creates a new RelationService. topUsers and publisher may be nil.
func NewRelationService(
	userRepo repositories.UserRepository,
	restaurantRepo repositories.RestaurantRepository,
	favoriteRepo repositories.FavoriteRepository,
	likeRepo repositories.LikeRepository,
	followRepo repositories.FollowshipRepository,
	topUsers TopUsersCache,
	publisher EventPublisher,
) *RelationService {
	return &RelationService{
		userRepo:       userRepo,
		restaurantRepo: restaurantRepo,
		favoriteRepo:   favoriteRepo,
		likeRepo:       likeRepo,
		followRepo:     followRepo,
		topUsers:       topUsers,
		publisher:      publisher,
	}
}

// pairStore is the subset shared by the three relation repositories.
type pairStore interface {
	Exists(ctx context.Context, a, b string) (bool, error)
	Create(ctx context.Context, a, b string) error
	Delete(ctx context.Context, a, b string) error
}

type toggle struct {
	store       pairStore
	lookup      func(ctx context.Context, id string) error // target existence
	missing     string
	duplicate   string
	notExisting string
	addedEvent  string
	removeEvent string
}

func (s *RelationService) favoriteToggle() toggle {
	return toggle{
		store:       s.favoriteRepo,
		lookup:      s.restaurantExists,
		missing:     "Restaurant didn't exist!",
		duplicate:   "You have favorited this restaurant!",
		notExisting: "You haven't favorited this restaurant",
		addedEvent:  EventFavoriteAdded,
		removeEvent: EventFavoriteRemoved,
	}
}

func (s *RelationService) likeToggle() toggle {
	return toggle{
		store:       s.likeRepo,
		lookup:      s.restaurantExists,
		missing:     "Restaurant didn't exist!",
		duplicate:   "You have liked this restaurant!",
		notExisting: "You haven't liked this restaurant",
		addedEvent:  EventLikeAdded,
		removeEvent: EventLikeRemoved,
	}
}

func (s *RelationService) followToggle() toggle {
	return toggle{
		store:       s.followRepo,
		lookup:      s.userExists,
		missing:     "User didn't exist!",
		duplicate:   "You are already following this user!",
		notExisting: "You haven't followed this user!",
		addedEvent:  EventFollowingAdded,
		removeEvent: EventFollowingRemoved,
	}
}

func (s *RelationService) restaurantExists(ctx context.Context, id string) error {
	_, err := s.restaurantRepo.GetByID(ctx, id)
	return err
}

func (s *RelationService) userExists(ctx context.Context, id string) error {
	_, err := s.userRepo.GetByID(ctx, id)
	return err
}

// add looks the target up and checks for an existing pair concurrently, then
// creates the pair. The storage primary key catches a concurrent duplicate.
func (s *RelationService) add(ctx context.Context, t toggle, callerID, targetID string) error {
	var exists bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := t.lookup(gctx, targetID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(ErrNotFound, "%s", t.missing)
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		exists, err = t.store.Exists(gctx, callerID, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if exists {
		return newError(ErrConflict, "%s", t.duplicate)
	}

	if err := t.store.Create(ctx, callerID, targetID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return newError(ErrConflict, "%s", t.duplicate)
		}
		return err
	}
	publishActivity(s.publisher, t.addedEvent, callerID, targetID)
	return nil
}

func (s *RelationService) remove(ctx context.Context, t toggle, callerID, targetID string) error {
	if err := t.store.Delete(ctx, callerID, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(ErrPrecondition, "%s", t.notExisting)
		}
		return err
	}
	publishActivity(s.publisher, t.removeEvent, callerID, targetID)
	return nil
}

// AddFavorite records that callerID favorited restaurantID.
func (s *RelationService) AddFavorite(ctx context.Context, callerID, restaurantID string) error {
	return s.add(ctx, s.favoriteToggle(), callerID, restaurantID)
}

// RemoveFavorite drops callerID's favorite on restaurantID.
func (s *RelationService) RemoveFavorite(ctx context.Context, callerID, restaurantID string) error {
	return s.remove(ctx, s.favoriteToggle(), callerID, restaurantID)
}

// AddLike records that callerID liked restaurantID.
func (s *RelationService) AddLike(ctx context.Context, callerID, restaurantID string) error {
	return s.add(ctx, s.likeToggle(), callerID, restaurantID)
}

// RemoveLike drops callerID's like on restaurantID.
func (s *RelationService) RemoveLike(ctx context.Context, callerID, restaurantID string) error {
	return s.remove(ctx, s.likeToggle(), callerID, restaurantID)
}

// AddFollowing makes callerID follow targetID. Following oneself is rejected.
func (s *RelationService) AddFollowing(ctx context.Context, callerID, targetID string) error {
	if callerID == targetID {
		return newError(ErrValidation, "You cannot follow yourself!")
	}
	if err := s.add(ctx, s.followToggle(), callerID, targetID); err != nil {
		return err
	}
	invalidateTopUsers(ctx, s.topUsers)
	return nil
}

// RemoveFollowing makes callerID stop following targetID.
func (s *RelationService) RemoveFollowing(ctx context.Context, callerID, targetID string) error {
	if err := s.remove(ctx, s.followToggle(), callerID, targetID); err != nil {
		return err
	}
	invalidateTopUsers(ctx, s.topUsers)
	return nil
}
