package http

import (
	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

func respondSuccess(c *gin.Context, code int, message string, payload gin.H) {
	body := gin.H{
		"status":  statusSuccess,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  statusError,
		"message": message,
	})
}
