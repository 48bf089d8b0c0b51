package utils

import (
	"github.com/gin-gonic/gin"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// JSONError writes the error envelope. details is omitted when nil.
func JSONError(c *gin.Context, status int, code, message string, details ...interface{}) {
	body := gin.H{"code": code, "message": message}
	if len(details) == 1 && details[0] != nil {
		body["details"] = details[0]
	} else if len(details) > 1 {
		body["details"] = details
	}
	c.JSON(status, gin.H{"success": false, "error": body})
}
