package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/repositories"
	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// PasswordCost is the bcrypt cost factor used for stored passwords.
const PasswordCost = 10

// SignUpInput carries the fields of the sign-up form.
type SignUpInput struct {
	Name          string `json:"name" form:"name" validate:"required,max=100"`
	Email         string `json:"email" form:"email" validate:"required,email,max=255"`
	Password      string `json:"password" form:"password" validate:"required,max=72"`
	PasswordCheck string `json:"passwordCheck" form:"passwordCheck"`
}

// AuthService handles account registration and sessions.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	validate  *validator.Validate
	publisher EventPublisher
	topUsers  TopUsersCache
}

// NewAuthService creates a new AuthService. publisher and topUsers may be nil.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, publisher EventPublisher, topUsers TopUsersCache) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		validate:  validator.New(),
		publisher: publisher,
		topUsers:  topUsers,
	}
}

// RegisterAccount validates the sign-up form, hashes the password and stores the user.
func (s *AuthService) RegisterAccount(ctx context.Context, in SignUpInput) (*models.User, error) {
	if in.Password != in.PasswordCheck {
		return nil, newError(ErrValidation, "Passwords do not match!")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	count, err := s.userRepo.CountByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newError(ErrConflict, "Email already exists!")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Name: in.Name, Email: in.Email, Password: string(hashed)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up for the same email.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "Email already exists!")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	publishActivity(s.publisher, EventUserRegistered, user.ID, user.ID)
	invalidateTopUsers(ctx, s.topUsers)
	return user, nil
}

// Authenticate checks the credentials and returns a signed session token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, newError(ErrAuthentication, "Email and password are required")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, newError(ErrAuthentication, "Incorrect email or password")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, newError(ErrAuthentication, "Incorrect email or password")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// TokenTTL reports how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }

// ValidateToken parses and validates a session token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		logger.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if id, _ := claims["user_id"].(string); id == "" {
			return nil, errors.New("invalid token: missing user_id")
		}
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
