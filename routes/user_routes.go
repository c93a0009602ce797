package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/voidswing/ff-l/controllers"
)

func UserRoutes(r *gin.Engine, ct *controllers.UserController) {
	api := r.Group("/api/user")
	{
		api.POST("/login", ct.Login)
	}
}
