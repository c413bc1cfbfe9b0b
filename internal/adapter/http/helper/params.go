package helper

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into T. An empty body decodes to the
// zero value, so required fields are reported by validation instead.
func BindJSON[T any](c *gin.Context) (T, error) {
	var params T

	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return params, nil
	}

	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		return params, err
	}

	return params, nil
}

// PositiveIntParam reads a path parameter that must be a positive integer.
func PositiveIntParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))

	if err != nil || value <= 0 {
		return 0, false
	}

	return value, true
}
