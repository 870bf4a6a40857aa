package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/controllers/user_controllers"
	middleware "github.com/joy095/workspace/middlewares"
)

func RegisterUserRoutes(router *gin.Engine, deps Dependencies) {
	userController := user_controllers.NewUserController(deps.Store, deps.Signer)

	router.GET("/users", userController.ListUsers)
	router.POST("/login", middleware.CombinedRateLimiter(deps.Redis, "login", "10-2m", "30-30m"), userController.Login)
}
