package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-order-app/utils"
)

// WebSocketAuthMiddleware -> token lewat query string karena browser tidak
// bisa set header Authorization pada handshake websocket
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
