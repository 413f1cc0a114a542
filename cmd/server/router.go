package main

import (
	"github.com/gin-gonic/gin"
	"github.com/thereayou/party-rooms/internal/handlers"
	"github.com/thereayou/party-rooms/internal/middleware"
	"github.com/thereayou/party-rooms/pkg/auth"
)

// APIEndpoints регистрирует маршруты. jwtMgr == nil отключает защиту изменения вопросов.
func APIEndpoints(r *gin.Engine, wsH *handlers.WebSocketHandler, questionH *handlers.QuestionHandler,
	health gin.HandlerFunc, jwtMgr *auth.JWTManager) {
	r.GET("/healthz", health)
	r.GET("/ws", wsH.HandleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/questions", questionH.List)

		admin := api.Group("/questions")
		if jwtMgr != nil {
			admin.Use(middleware.AdminAuth(jwtMgr))
		}
		admin.POST("/:kind", questionH.Add)
		admin.DELETE("/:kind/:index", questionH.Delete)
	}
}
