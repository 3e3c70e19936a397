package utils

import "github.com/gin-gonic/gin"

// SuccessResponse and ErrorResponse are the uniform envelope every handler
// returns.

func SuccessResponse(message string, data interface{}) gin.H {
	return gin.H{
		"success": true,
		"message": message,
		"data":    data,
	}
}

func ErrorResponse(message, detail string) gin.H {
	resp := gin.H{
		"success": false,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	return resp
}
