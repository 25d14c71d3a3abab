package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/internal/middleware"
	"github.com/miaout11/forum-express-grading/internal/services"
	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// AdminHandler serves the restaurant back office.
type AdminHandler struct {
	restaurantService *services.RestaurantService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(restaurantService *services.RestaurantService) *AdminHandler {
	return &AdminHandler{restaurantService: restaurantService}
}

// RegisterRoutes registers the admin routes behind the admin gate.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	admin := router.Group("/admin", middleware.AdminRequired())
	admin.Get("/", h.Index)
	admin.Get("/restaurants", h.Restaurants)
	admin.Get("/restaurants/create", h.CreateRestaurantPage)
	admin.Post("/restaurants", h.CreateRestaurant)
}

// Index sends admins to the restaurant list.
func (h *AdminHandler) Index(c *fiber.Ctx) error {
	return c.Redirect("/admin/restaurants")
}

// Restaurants renders every restaurant with its category.
func (h *AdminHandler) Restaurants(c *fiber.Ctx) error {
	restaurants, err := h.restaurantService.ListAllRestaurants(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin/restaurants", fiber.Map{"restaurants": restaurants})
}

// CreateRestaurantPage renders the create form with the category choices.
func (h *AdminHandler) CreateRestaurantPage(c *fiber.Ctx) error {
	categories, err := h.restaurantService.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin/create-restaurant", fiber.Map{"categories": categories})
}

// CreateRestaurant saves the create form.
func (h *AdminHandler) CreateRestaurant(c *fiber.Ctx) error {
	var in services.RestaurantInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	upload, done, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer done()

	restaurant, err := h.restaurantService.CreateRestaurant(c.UserContext(), middleware.CurrentUserID(c), in, upload)
	if err != nil {
		return err
	}

	logger.Info("restaurant created", zap.String("restaurant_id", restaurant.ID), zap.String("admin_id", middleware.CurrentUserID(c)))
	middleware.SetFlash(c, middleware.FlashSuccess, "Restaurant was successfully created")
	return c.Redirect("/admin/restaurants")
}
