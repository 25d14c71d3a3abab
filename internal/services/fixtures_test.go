package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/database"
	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
	"github.com/miaout11/forum-express-grading/internal/services"
)

// recordingPublisher captures published routing keys.
type recordingPublisher struct {
	mu     sync.Mutex
	routed []string
}

func (p *recordingPublisher) Publish(exchange, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routed = append(p.routed, routingKey)
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.routed...)
}

// memoryCache is an in-process services.TopUsersCache.
type memoryCache struct {
	mu            sync.Mutex
	users         []services.TopUser
	filled        bool
	generation    int64
	sets          int
	invalidations int
}

func (c *memoryCache) Get(ctx context.Context) ([]services.TopUser, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.users, c.filled, nil
}

func (c *memoryCache) Generation(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *memoryCache) Set(ctx context.Context, generation int64, users []services.TopUser) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false, nil
	}
	c.users, c.filled = users, true
	c.sets++
	return true, nil
}

func (c *memoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users, c.filled = nil, false
	c.generation++
	c.invalidations++
	return nil
}

// memoryFileStore keeps uploads in memory.
type memoryFileStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	fail  bool
}

func (s *memoryFileStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[filename] = data
	return "/upload/" + filename, nil
}

func (s *memoryFileStore) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, strings.TrimPrefix(path, "/upload/"))
	return nil
}

// Minimal file headers that sniff as the matching image types.
const (
	pngImage  = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	jpegImage = "\xff\xd8\xff\xe0\x00\x10JFIF\x00"
)

type fixture struct {
	db          *gorm.DB
	users       *repositories.GORMUserRepository
	restaurants *repositories.GORMRestaurantRepository
	categories  *repositories.GORMCategoryRepository
	comments    *repositories.GORMCommentRepository
	favorites   *repositories.GORMFavoriteRepository
	likes       *repositories.GORMLikeRepository
	follows     *repositories.GORMFollowshipRepository
	publisher   *recordingPublisher
	cache       *memoryCache
	files       *memoryFileStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: database.MemoryDSN()})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &fixture{
		db:          db,
		users:       repositories.NewGORMUserRepository(db),
		restaurants: repositories.NewGORMRestaurantRepository(db),
		categories:  repositories.NewGORMCategoryRepository(db),
		comments:    repositories.NewGORMCommentRepository(db),
		favorites:   repositories.NewGORMFavoriteRepository(db),
		likes:       repositories.NewGORMLikeRepository(db),
		follows:     repositories.NewGORMFollowshipRepository(db),
		publisher:   &recordingPublisher{},
		cache:       &memoryCache{},
		files:       &memoryFileStore{},
	}
}

func (f *fixture) relationService() *services.RelationService {
	return services.NewRelationService(f.users, f.restaurants, f.favorites, f.likes, f.follows, f.cache, f.publisher)
}

func (f *fixture) userService() *services.UserService {
	return services.NewUserService(f.users, f.comments, f.follows, f.files, f.cache, f.publisher)
}

func (f *fixture) restaurantService() *services.RestaurantService {
	return services.NewRestaurantService(f.restaurants, f.categories, f.favorites, f.likes, f.files, f.publisher)
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "hash"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) restaurant(t *testing.T, name string) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{Name: name}
	require.NoError(t, f.restaurants.Create(context.Background(), r))
	return r
}
