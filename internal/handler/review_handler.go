package handler

import (
	"social-blog/internal/service"
	"social-blog/pkg/jwt"
	"social-blog/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service *service.ReviewService
}

func NewReviewHandler(s *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: s}
}

type reviewRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create handles POST /reviews/blogs/:id.
func (h *ReviewHandler) Create(c *gin.Context) {
	blogID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	review, err := h.service.Create(c.Request.Context(), jwt.GetUserID(c), blogID, req.Content)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, "Create new review successful", review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	review, err := h.service.Update(c.Request.Context(), jwt.GetUserID(c), id, req.Content)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Update review successful", review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), jwt.GetUserID(c), id); err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Delete review successful", nil)
}
