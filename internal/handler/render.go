package handler

import (
	"errors"
	"strconv"

	"social-blog/internal/repository"
	"social-blog/internal/service"
	"social-blog/pkg/logger"
	"social-blog/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// renderError answers with the status of a domain error, or a generic 500
// for anything else.
func renderError(c *gin.Context, err error) {
	var domainErr *service.Error
	if errors.As(err, &domainErr) {
		response.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	response.InternalError(c, "Internal server error")
}

// idParam reads a positive integer path parameter, answering 400 if it is
// missing or malformed.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// pageQuery reads ?page=&limit=, falling back to the defaults.
func pageQuery(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repository.Page{Page: page, Limit: limit}.Normalize()
}

func paginated[T any](c *gin.Context, message string, items []T, total int64, page repository.Page) {
	response.SuccessWithMessage(c, message, response.NewPaginatedResponse(items, total, page.Page, page.Limit))
}
