package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/controllers/space_controller"
)

func RegisterSpaceRoutes(router *gin.Engine, deps Dependencies) {
	spaceController := space_controller.NewSpaceController(deps.Store)
	if deps.Service.Now != nil {
		spaceController.Now = deps.Service.Now
	}
	reservationController := reservation_controller.NewReservationController(deps.Service)

	api := router.Group("/spaces")
	{
		api.GET("", spaceController.ListSpaces)
		api.GET("/:id/next-availability", reservationController.NextAvailability)
	}
}
