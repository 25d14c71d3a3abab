package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// TopUsersLimit is the number of entries on the leaderboard.
const TopUsersLimit = 10

// Upload is a file submitted with a form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// FileStore persists uploads and returns a public reference to them.
type FileStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

// TopUser is a leaderboard entry.
type TopUser struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Image         string `json:"image"`
	FollowerCount int    `json:"followerCount"`
	IsFollowed    bool   `json:"isFollowed"`
}

// TopUsersCache stores the ranked leaderboard, without per-caller flags.
// Set only writes when no Invalidate happened since Generation returned
// generation.
type TopUsersCache interface {
	Get(ctx context.Context) ([]TopUser, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, users []TopUser) (bool, error)
	Invalidate(ctx context.Context) error
}

// Profile is the payload of a user's profile page.
type Profile struct {
	User        *models.User     `json:"user"`
	LoginUserID string           `json:"loginUserId"`
	Comments    []models.Comment `json:"comments"`
	IsFollowed  bool             `json:"isFollowed"`
}

// UpdateProfileInput carries the edit-profile form.
type UpdateProfileInput struct {
	TargetID string
	CallerID string
	Name     string
	Image    *Upload // nil keeps the current image
}

// UserService serves profile pages, profile edits and the leaderboard.
type UserService struct {
	userRepo    repositories.UserRepository
	commentRepo repositories.CommentRepository
	followRepo  repositories.FollowshipRepository
	files       FileStore
	topUsers    TopUsersCache
	publisher   EventPublisher
}

// NewUserService creates a new UserService. topUsers and publisher may be nil.
func NewUserService(userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, followRepo repositories.FollowshipRepository, files FileStore, topUsers TopUsersCache, publisher EventPublisher) *UserService {
	return &UserService{
		userRepo:    userRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
		files:       files,
		topUsers:    topUsers,
		publisher:   publisher,
	}
}

// ViewProfile loads targetID's profile as seen by callerID.
func (s *UserService) ViewProfile(ctx context.Context, targetID, callerID string) (*Profile, error) {
	var (
		user       *models.User
		comments   []models.Comment
		isFollowed bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetProfile(gctx, targetID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.commentRepo.FirstPerRestaurantByUser(gctx, targetID)
		return err
	})
	g.Go(func() error {
		var err error
		isFollowed, err = s.followRepo.Exists(gctx, callerID, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "This user does not exist!")
		}
		return nil, err
	}

	return &Profile{
		User:        user,
		LoginUserID: callerID,
		Comments:    comments,
		IsFollowed:  isFollowed,
	}, nil
}

// GetEditableUser loads the raw user shown on the edit form.
func (s *UserService) GetEditableUser(ctx context.Context, targetID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "This user does not exist!")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the caller's own name and, when an upload is given, image.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) error {
	if in.CallerID != in.TargetID {
		return newError(ErrAuthorization, "You cannot edit another user's profile!")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return newError(ErrValidation, "User name is required!")
	}
	if len(name) > 100 {
		return newError(ErrValidation, "User name is too long!")
	}

	var upload *Upload
	if in.Image != nil && s.files != nil {
		checked, err := checkImage(in.Image)
		if err != nil {
			return err
		}
		upload = checked
	}

	var (
		user   *models.User
		stored string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetByID(gctx, in.TargetID)
		return err
	})
	g.Go(func() error {
		if upload == nil {
			return nil
		}
		var err error
		stored, err = s.files.Save(gctx, upload.Filename, upload.Content)
		if err != nil {
			return fmt.Errorf("failed to store image: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		discardUpload(ctx, s.files, stored)
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(ErrNotFound, "This user does not exist!")
		}
		return err
	}

	imagePath := user.Image
	if stored != "" {
		imagePath = stored
	}
	if err := s.userRepo.UpdateProfile(ctx, user.ID, name, imagePath); err != nil {
		discardUpload(ctx, s.files, stored)
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(ErrNotFound, "This user does not exist!")
		}
		return err
	}

	publishActivity(s.publisher, EventProfileUpdated, in.CallerID, user.ID)
	invalidateTopUsers(ctx, s.topUsers)
	return nil
}

// ListTopUsers ranks users by follower count and marks the ones callerID follows.
func (s *UserService) ListTopUsers(ctx context.Context, callerID string) ([]TopUser, error) {
	var (
		ranked    []TopUser
		following []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ranked, err = s.rankedUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		following, err = s.followRepo.ListFollowingIDs(gctx, callerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	followed := make(map[string]struct{}, len(following))
	for _, id := range following {
		followed[id] = struct{}{}
	}
	out := make([]TopUser, len(ranked))
	for i, u := range ranked {
		_, u.IsFollowed = followed[u.ID]
		out[i] = u
	}
	return out, nil
}

func (s *UserService) rankedUsers(ctx context.Context) ([]TopUser, error) {
	cacheable := false
	var generation int64
	if s.topUsers != nil {
		cached, ok, err := s.topUsers.Get(ctx)
		switch {
		case err != nil:
			logger.Warn("top users cache read failed", zap.Error(err))
		case ok:
			return cached, nil
		default:
			// Read before the database so a concurrent invalidation wins.
			generation, err = s.topUsers.Generation(ctx)
			if err != nil {
				logger.Warn("top users cache read failed", zap.Error(err))
			} else {
				cacheable = true
			}
		}
	}

	users, err := s.userRepo.ListWithFollowers(ctx)
	if err != nil {
		return nil, err
	}
	ranked := RankTopUsers(users, TopUsersLimit)

	if cacheable {
		stored, err := s.topUsers.Set(ctx, generation, ranked)
		if err != nil {
			logger.Warn("top users cache write failed", zap.Error(err))
		} else if !stored {
			logger.Debug("top users cache write skipped after invalidation")
		}
	}
	return ranked, nil
}

// RankTopUsers sorts users by descending follower count, keeping the input
// order for ties, and truncates to limit entries.
func RankTopUsers(users []models.User, limit int) []TopUser {
	ranked := make([]TopUser, len(users))
	for i, u := range users {
		ranked[i] = TopUser{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Image:         u.Image,
			FollowerCount: len(u.Followers),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FollowerCount > ranked[j].FollowerCount
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func invalidateTopUsers(ctx context.Context, c TopUsersCache) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn("top users cache invalidation failed", zap.Error(err))
	}
}
