package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/miaout11/forum-express-grading/internal/middleware"
	"github.com/miaout11/forum-express-grading/internal/services"
)

// UserHandler serves profiles and the top-users leaderboard.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the user routes. /users/top is registered before
// /users/:id so it is not taken for an ID.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/top", h.TopUsers)
	users.Get("/:id", h.Profile)
	users.Get("/:id/edit", h.EditProfile)
	users.Put("/:id", h.UpdateProfile)
}

// TopUsers renders the leaderboard.
func (h *UserHandler) TopUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListTopUsers(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return render(c, "top-users", fiber.Map{"users": users})
}

// Profile renders a user's profile page.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.userService.ViewProfile(c.UserContext(), c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return render(c, "users/profile", fiber.Map{
		"user":        profile.User,
		"loginUserId": profile.LoginUserID,
		"comments":    profile.Comments,
		"isFollowed":  profile.IsFollowed,
	})
}

// EditProfile renders the edit form.
func (h *UserHandler) EditProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetEditableUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, "users/edit", fiber.Map{"user": user})
}

// UpdateProfile saves the edit form.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	targetID := c.Params("id")
	upload, done, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer done()

	err = h.userService.UpdateProfile(c.UserContext(), services.UpdateProfileInput{
		TargetID: targetID,
		CallerID: middleware.CurrentUserID(c),
		Name:     c.FormValue("name"),
		Image:    upload,
	})
	if err != nil {
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Profile updated successfully!")
	return c.Redirect("/users/" + targetID)
}
