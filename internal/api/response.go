package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func ok(c *gin.Context, message string, data any) {
	c.JSON(200, envelope{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, msg string, err error) {
	body := envelope{Error: msg}
	if err != nil {
		body.Details = err.Error()
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func abort(c *gin.Context, status int, msg string, err error) {
	fail(c, status, msg, err)
	c.Abort()
}

// queryInt reads a positive integer parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
