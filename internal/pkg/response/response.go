package response

import (
	"math/rand/v2"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

var notFoundMessages = []string{
	"Nothing here, the page wandered off",
	"This section took a day off",
	"We looked everywhere, even under the hero banner",
	"404, but the rest of the page is lovely",
	"Whatever was here has been reordered out of existence",
}

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": 0, "code": status, "message": message})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	abort(c, http.StatusUnauthorized, "sign in first")
}

// UnauthorizedMsg sends a 401 error response with a custom message.
func UnauthorizedMsg(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context) {
	abort(c, http.StatusForbidden, "not allowed")
}

// ForbiddenMsg sends a 403 error response with a custom message.
func ForbiddenMsg(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, notFoundMessages[rand.IntN(len(notFoundMessages))])
}

// NotFoundMsg sends a 404 error with a custom message.
func NotFoundMsg(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, message)
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	abort(c, http.StatusMethodNotAllowed, "method not allowed")
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, message)
}

// UnprocessableEntity sends a 422 error response.
func UnprocessableEntity(c *gin.Context, message string) {
	abort(c, http.StatusUnprocessableEntity, message)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context) {
	abort(c, http.StatusTooManyRequests, "too many requests, slow down")
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	abort(c, http.StatusInternalServerError, err.Error())
}

// BadGateway sends a 502 error response for failed upstream calls.
func BadGateway(c *gin.Context, message string) {
	abort(c, http.StatusBadGateway, message)
}
