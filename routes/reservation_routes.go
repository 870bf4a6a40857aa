package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/controllers/reservation_controller"
	middleware "github.com/joy095/workspace/middlewares"
	"github.com/joy095/workspace/middlewares/auth"
)

func RegisterReservationRoutes(router *gin.Engine, deps Dependencies) {
	reservationController := reservation_controller.NewReservationController(deps.Service)

	api := router.Group("/reservations")
	api.GET("", reservationController.ListReservations)

	protected := api.Group("")
	protected.Use(auth.IdentityMiddleware(deps.Signer, deps.Store))
	{
		protected.POST("", middleware.NewRateLimiter(deps.Redis, deps.BookingRate, "create-reservation"), reservationController.CreateReservation)
		protected.PATCH("/:id", reservationController.UpdateReservationStatus)
		protected.DELETE("/:id", reservationController.CancelReservation)
	}
}
