package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"golang.org/x/sync/errgroup"

	"github.com/miaout11/forum-express-grading/internal/middleware"
	"github.com/miaout11/forum-express-grading/internal/models"
	"github.com/miaout11/forum-express-grading/internal/services"
)

// RestaurantHandler serves the restaurant pages and comments.
type RestaurantHandler struct {
	restaurantService *services.RestaurantService
	commentService    *services.CommentService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(restaurantService *services.RestaurantService, commentService *services.CommentService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService, commentService: commentService}
}

// RegisterRoutes registers the restaurant and comment routes.
func (h *RestaurantHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/restaurants", h.List)
	router.Get("/restaurants/:id", h.Detail)
	router.Post("/comments", h.PostComment)
}

// List renders the restaurant index, optionally for one category.
func (h *RestaurantHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	callerID := middleware.CurrentUserID(c)
	categoryID := utils.CopyString(c.Query("categoryId"))

	var (
		restaurants []services.RestaurantCard
		categories  []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurants, err = h.restaurantService.ListRestaurants(gctx, callerID, categoryID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.restaurantService.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return render(c, "restaurants", fiber.Map{
		"restaurants": restaurants,
		"categories":  categories,
		"categoryId":  categoryID,
	})
}

// Detail renders one restaurant with its comments.
func (h *RestaurantHandler) Detail(c *fiber.Ctx) error {
	restaurant, err := h.restaurantService.GetRestaurant(c.UserContext(), c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return render(c, "restaurant", fiber.Map{"restaurant": restaurant})
}

// CommentRequest represents the comment form.
type CommentRequest struct {
	RestaurantID string `json:"restaurantId" form:"restaurantId"`
	Text         string `json:"text" form:"text"`
}

// PostComment stores a comment and returns to the restaurant page.
func (h *RestaurantHandler) PostComment(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if _, err := h.commentService.PostComment(c.UserContext(), middleware.CurrentUserID(c), req.RestaurantID, req.Text); err != nil {
		return err
	}
	return c.Redirect("/restaurants/" + req.RestaurantID)
}
