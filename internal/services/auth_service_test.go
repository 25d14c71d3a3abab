package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
	"github.com/miaout11/forum-express-grading/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListWithFollowers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id, name, image string) error {
	args := m.Called(ctx, id, name, image)
	return args.Error(0)
}

func (m *MockUserRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func signUp() services.SignUpInput {
	return services.SignUpInput{
		Name:          "root",
		Email:         "root@example.com",
		Password:      "12345678",
		PasswordCheck: "12345678",
	}
}

func TestAuthService_RegisterAccount(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	publisher := &recordingPublisher{}
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, publisher, nil)

	var stored *models.User
	mockRepo.On("CountByEmail", ctx, "root@example.com").Return(int64(0), nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.User) }).
		Return(nil).Once()

	user, err := authService.RegisterAccount(ctx, signUp())
	require.NoError(t, err)
	assert.Equal(t, "root", user.Name)
	assert.NotEqual(t, "12345678", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("12345678")))
	cost, err := bcrypt.Cost([]byte(stored.Password))
	require.NoError(t, err)
	assert.Equal(t, services.PasswordCost, cost)
	assert.Equal(t, []string{services.EventUserRegistered}, publisher.keys())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterAccount_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("password mismatch", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil, nil)
		in := signUp()
		in.PasswordCheck = "different"

		_, err := authService.RegisterAccount(ctx, in)
		assert.ErrorIs(t, err, services.ErrValidation)
		assert.EqualError(t, err, "Passwords do not match!")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil, nil)
		in := signUp()
		in.Email = "not-an-email"

		_, err := authService.RegisterAccount(ctx, in)
		assert.ErrorIs(t, err, services.ErrValidation)
		assert.Contains(t, err.Error(), "Field 'Email' failed on the 'email' tag")
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil, nil)
		mockRepo.On("CountByEmail", ctx, "root@example.com").Return(int64(1), nil).Once()

		_, err := authService.RegisterAccount(ctx, signUp())
		assert.ErrorIs(t, err, services.ErrConflict)
		assert.EqualError(t, err, "Email already exists!")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("concurrent sign-up wins the race", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil, nil)
		mockRepo.On("CountByEmail", ctx, "root@example.com").Return(int64(0), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
			Return(fmt.Errorf("user %w", repositories.ErrDuplicate)).Once()

		_, err := authService.RegisterAccount(ctx, signUp())
		assert.ErrorIs(t, err, services.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil, nil)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       "user-123",
		Name:     "user1",
		Email:    "user1@example.com",
		Password: string(hashedPassword),
		IsAdmin:  true,
	}

	// Test successful login
	mockRepo.On("GetByEmail", ctx, "user1@example.com").Return(user, nil).Once()
	token, got, err := authService.Authenticate(ctx, "User1@example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, true, claims["is_admin"])

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", ctx, "user1@example.com").Return(user, nil).Once()
	_, _, err = authService.Authenticate(ctx, "user1@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrAuthentication)
	assert.EqualError(t, err, "Incorrect email or password")

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").
		Return(nil, fmt.Errorf("user with email nobody@example.com %w", repositories.ErrNotFound)).Once()
	_, _, err = authService.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrAuthentication)
	assert.EqualError(t, err, "Incorrect email or password")

	// Test missing fields
	_, _, err = authService.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, services.ErrAuthentication)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil, nil)

	validTokenString, err := authService.IssueToken(&models.User{ID: "user-123"})
	require.NoError(t, err)

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, false, claims["is_admin"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test token signed with another secret
	other := services.NewAuthService(mockRepo, "another_secret", time.Hour, nil, nil)
	foreign, _ := other.IssueToken(&models.User{ID: "user-123"})
	_, err = authService.ValidateToken(foreign)
	assert.Error(t, err)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(), // Expired 1 hour ago
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test token without a subject
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	anonymousString, _ := anonymous.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(anonymousString)
	assert.EqualError(t, err, "invalid token: missing user_id")
}
