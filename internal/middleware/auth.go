package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/party-rooms/pkg/auth"
)

const AdminSubjectKey = "adminSubject"

// AdminAuth проверяет JWT администратора для изменения списка вопросов
func AdminAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing or invalid token"})
			c.Abort()
			return
		}

		claims, err := jwtManager.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			c.Abort()
			return
		}

		c.Set(AdminSubjectKey, claims.Subject)
		c.Next()
	}
}
