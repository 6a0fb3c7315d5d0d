package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/wbs-backend-go/internal/repository"
	"github.com/jengzang/wbs-backend-go/internal/service"
	"github.com/jengzang/wbs-backend-go/pkg/response"
)

// fail maps service and repository errors to HTTP responses
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrDuplicateTaskID):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrAggregateReadOnly):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrMissingField):
		response.BadRequest(c, err.Error())
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
		response.InternalError(c, "internal server error")
	}
}
