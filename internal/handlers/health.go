package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/party-rooms/internal/services"
)

func Health(rooms services.RoomCounter, conns services.ConnectionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"rooms":       rooms.Len(),
			"connections": conns.ClientCount(),
		})
	}
}
