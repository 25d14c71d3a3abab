package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/miaout11/forum-express-grading/internal/database"
	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: database.MemoryDSN()})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, repo repositories.UserRepository, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	u := createUser(t, repo, "alice")
	assert.NotEmpty(t, u.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Contains(t, err.Error(), "user with ID missing not found")

	// The unique index on email rejects a second row.
	err = repo.Create(ctx, &models.User{Name: "other", Email: "alice@example.com", Password: "hash"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	count, err := repo.CountByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()
	u := createUser(t, repo, "bob")

	require.NoError(t, repo.UpdateProfile(ctx, u.ID, "Bobby", "/upload/a.png"))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bobby", got.Name)
	assert.Equal(t, "/upload/a.png", got.Image)

	err = repo.UpdateProfile(ctx, "missing", "x", "")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFollowshipRepository_Directional(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	follows := repositories.NewGORMFollowshipRepository(db)
	ctx := context.Background()
	a := createUser(t, users, "a")
	b := createUser(t, users, "b")

	require.NoError(t, follows.Create(ctx, a.ID, b.ID))
	err := follows.Create(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	// b following a back is a different row.
	require.NoError(t, follows.Create(ctx, b.ID, a.ID))

	ok, err := follows.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := follows.ListFollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids)

	profile, err := users.GetProfile(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, profile.Followers, 1)
	assert.Equal(t, a.ID, profile.Followers[0].ID)
	require.Len(t, profile.Followings, 1)
	assert.Equal(t, a.ID, profile.Followings[0].ID)

	require.NoError(t, follows.Delete(ctx, a.ID, b.ID))
	err = follows.Delete(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFavoriteAndLikeRepositories(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	restaurants := repositories.NewGORMRestaurantRepository(db)
	favorites := repositories.NewGORMFavoriteRepository(db)
	likes := repositories.NewGORMLikeRepository(db)
	ctx := context.Background()

	u := createUser(t, users, "carol")
	r := &models.Restaurant{Name: "Noodle Bar"}
	require.NoError(t, restaurants.Create(ctx, r))

	require.NoError(t, favorites.Create(ctx, u.ID, r.ID))
	assert.ErrorIs(t, favorites.Create(ctx, u.ID, r.ID), repositories.ErrDuplicate)

	// Likes are independent of favorites.
	ok, err := likes.Exists(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, likes.Create(ctx, u.ID, r.ID))

	favIDs, err := favorites.ListRestaurantIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, favIDs)

	profile, err := users.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, profile.FavoritedRestaurants, 1)
	assert.Equal(t, "Noodle Bar", profile.FavoritedRestaurants[0].Name)

	require.NoError(t, favorites.Delete(ctx, u.ID, r.ID))
	assert.ErrorIs(t, favorites.Delete(ctx, u.ID, r.ID), repositories.ErrNotFound)
	require.NoError(t, likes.Delete(ctx, u.ID, r.ID))
}

func TestCommentRepository_FirstPerRestaurantByUser(t *testing.T) {
	db := setupDB(t)
	users := repositories.NewGORMUserRepository(db)
	restaurants := repositories.NewGORMRestaurantRepository(db)
	comments := repositories.NewGORMCommentRepository(db)
	ctx := context.Background()

	u := createUser(t, users, "dave")
	r1 := &models.Restaurant{Name: "Curry House"}
	r2 := &models.Restaurant{Name: "Taco Stand"}
	require.NoError(t, restaurants.Create(ctx, r1))
	require.NoError(t, restaurants.Create(ctx, r2))

	base := time.Now().Add(-time.Hour)
	for i, c := range []models.Comment{
		{Text: "first curry", UserID: u.ID, RestaurantID: r1.ID, CreatedAt: base},
		{Text: "second curry", UserID: u.ID, RestaurantID: r1.ID, CreatedAt: base.Add(time.Minute)},
		{Text: "taco", UserID: u.ID, RestaurantID: r2.ID, CreatedAt: base.Add(2 * time.Minute)},
	} {
		c := c
		require.NoError(t, comments.Create(ctx, &c), "comment %d", i)
	}

	got, err := comments.FirstPerRestaurantByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first curry", got[0].Text)
	require.NotNil(t, got[0].Restaurant)
	assert.Equal(t, "Curry House", got[0].Restaurant.Name)
	assert.Equal(t, "taco", got[1].Text)
}

func TestRestaurantRepository_ListByCategory(t *testing.T) {
	db := setupDB(t)
	categories := repositories.NewGORMCategoryRepository(db)
	restaurants := repositories.NewGORMRestaurantRepository(db)
	ctx := context.Background()

	cat := &models.Category{Name: "Japanese"}
	require.NoError(t, categories.Create(ctx, cat))
	assert.ErrorIs(t, categories.Create(ctx, &models.Category{Name: "Japanese"}), repositories.ErrDuplicate)

	require.NoError(t, restaurants.Create(ctx, &models.Restaurant{Name: "Sushi", CategoryID: &cat.ID}))
	require.NoError(t, restaurants.Create(ctx, &models.Restaurant{Name: "Diner"}))

	all, err := restaurants.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := restaurants.List(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Sushi", filtered[0].Name)
	require.NotNil(t, filtered[0].Category)
	assert.Equal(t, "Japanese", filtered[0].Category.Name)

	_, err = restaurants.GetDetail(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
