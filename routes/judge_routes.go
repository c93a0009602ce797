package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/voidswing/ff-l/controllers"
)

func JudgeRoutes(r *gin.Engine, ct *controllers.JudgeController) {
	api := r.Group("/api")
	{
		api.POST("/judge", ct.Judge)
		api.GET("/judge/requests/:uuid", ct.GetRequest)
	}
}
