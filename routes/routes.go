package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/utils/jwt_parse"
	"github.com/redis/go-redis/v9"
)

// Dependencies are the shared collaborators every route group needs.
type Dependencies struct {
	Store       store.Store
	Service     *reservation_controller.ReservationService
	Signer      *jwt_parse.Signer
	Redis       *redis.Client // nil keeps rate limits in process
	BookingRate string
}

// RegisterRoutes mounts every route group on r.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	if deps.Service == nil {
		deps.Service = reservation_controller.NewReservationService(deps.Store)
	}

	RegisterUserRoutes(r, deps)
	RegisterLocationRoutes(r, deps)
	RegisterSpaceRoutes(r, deps)
	RegisterReservationRoutes(r, deps)
	RegisterRequestRoutes(r, deps)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok from workspace service"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}
