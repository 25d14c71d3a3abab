package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/internal/middleware"
	"github.com/miaout11/forum-express-grading/internal/services"
	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// AuthHandler handles sign-up, sign-in and sign-out.
type AuthHandler struct {
	authService *services.AuthService
	limiter     fiber.Handler
}

// NewAuthHandler creates a new AuthHandler. limiter may be nil.
func NewAuthHandler(authService *services.AuthService, limiter fiber.Handler) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	limited := []fiber.Handler{}
	if h.limiter != nil {
		limited = append(limited, h.limiter)
	}

	router.Get("/signup", h.SignUpPage)
	router.Post("/signup", append(limited, h.SignUp)...)
	router.Get("/signin", h.SignInPage)
	router.Post("/signin", append(limited, h.SignIn)...)
	router.Get("/logout", h.Logout)
}

// SignUpPage renders the sign-up form.
func (h *AuthHandler) SignUpPage(c *fiber.Ctx) error {
	return render(c, "signup", nil)
}

// SignUp registers a new account.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var in services.SignUpInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.authService.RegisterAccount(c.UserContext(), in)
	if err != nil {
		return err
	}

	logger.Info("user registered", zap.String("user_id", user.ID))
	middleware.SetFlash(c, middleware.FlashSuccess, "Account registered successfully!")
	return c.Redirect("/signin")
}

// SignInPage renders the sign-in form.
func (h *AuthHandler) SignInPage(c *fiber.Ctx) error {
	return render(c, "signin", nil)
}

// SignInRequest represents the sign-in form.
type SignInRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SignIn checks credentials and stores the session token in a cookie.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, user, err := h.authService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.authService.TokenTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	logger.Info("user signed in", zap.String("user_id", user.ID))
	middleware.SetFlash(c, middleware.FlashSuccess, "Signed in successfully!")
	return c.Redirect("/restaurants")
}

// Logout ends the session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	middleware.ClearSession(c)
	middleware.SetFlash(c, middleware.FlashSuccess, "Signed out successfully!")
	return c.Redirect("/signin")
}
