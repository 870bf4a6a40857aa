package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/controllers/request_controller"
	middleware "github.com/joy095/workspace/middlewares"
	"github.com/joy095/workspace/middlewares/auth"
)

func RegisterRequestRoutes(router *gin.Engine, deps Dependencies) {
	requestController := request_controller.NewRequestController(deps.Service)

	api := router.Group("/requests")
	api.GET("", requestController.ListRequests)

	protected := api.Group("")
	protected.Use(auth.IdentityMiddleware(deps.Signer, deps.Store))
	{
		protected.POST("", middleware.NewRateLimiter(deps.Redis, deps.BookingRate, "create-request"), requestController.CreateRequest)
		protected.PATCH("/:id", middleware.NewRateLimiter(deps.Redis, deps.BookingRate, "decide-request"), requestController.DecideRequest)
	}
}
