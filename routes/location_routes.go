package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/controllers/location_controller"
)

func RegisterLocationRoutes(router *gin.Engine, deps Dependencies) {
	locationController := location_controller.NewLocationController(deps.Store)
	if deps.Service.Now != nil {
		locationController.Now = deps.Service.Now
	}

	router.GET("/locations", locationController.ListLocations)
}
