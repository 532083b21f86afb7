package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(cors.Default())

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		api.POST("/valuations", handler.CreateValuation)
		api.GET("/valuations/recent", handler.GetRecentValuations)
		api.GET("/regions", handler.GetRegions)
	}
}
