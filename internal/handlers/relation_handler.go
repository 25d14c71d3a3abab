package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/miaout11/forum-express-grading/internal/middleware"
	"github.com/miaout11/forum-express-grading/internal/services"
)

// RelationHandler toggles favorites, likes and followships.
type RelationHandler struct {
	relationService *services.RelationService
}

// NewRelationHandler creates a new RelationHandler.
func NewRelationHandler(relationService *services.RelationService) *RelationHandler {
	return &RelationHandler{relationService: relationService}
}

// RegisterRoutes registers the relation routes.
func (h *RelationHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/favorite/:restaurantId", h.toggle("restaurantId", h.relationService.AddFavorite))
	router.Delete("/favorite/:restaurantId", h.toggle("restaurantId", h.relationService.RemoveFavorite))
	router.Post("/like/:restaurantId", h.toggle("restaurantId", h.relationService.AddLike))
	router.Delete("/like/:restaurantId", h.toggle("restaurantId", h.relationService.RemoveLike))
	router.Post("/following/:userId", h.toggle("userId", h.relationService.AddFollowing))
	router.Delete("/following/:userId", h.toggle("userId", h.relationService.RemoveFollowing))
}

// toggle runs op for the signed-in user and the target named by param, then
// sends the client back where it came from.
func (h *RelationHandler) toggle(param string, op func(ctx context.Context, callerID, targetID string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := op(c.UserContext(), middleware.CurrentUserID(c), c.Params(param)); err != nil {
			return err
		}
		return redirectBack(c)
	}
}
