package handler

import "github.com/gin-gonic/gin"

// Every endpoint answers with the same envelope: success flag, payload or
// null, error message or null.

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data, "error": nil})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "data": nil, "error": msg})
}
