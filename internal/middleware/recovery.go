package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery maps panics onto the standard response envelope so internals
// never leak to clients.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("[http] panic: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"success": false, "data": nil, "error": "internal server error"})
	})
}
