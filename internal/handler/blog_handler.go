package handler

import (
	"strconv"

	"social-blog/internal/service"
	"social-blog/pkg/jwt"
	"social-blog/pkg/response"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	service *service.BlogService
}

func NewBlogHandler(s *service.BlogService) *BlogHandler {
	return &BlogHandler{service: s}
}

type blogRequest struct {
	Title   string    `json:"title" binding:"required"`
	Content string    `json:"content" binding:"required"`
	Images  *[]string `json:"images"` // omitted keeps the stored images on update
}

func (r blogRequest) input() service.BlogInput {
	return service.BlogInput{Title: r.Title, Content: r.Content, Images: r.Images}
}

// List supports ?author= and paging.
func (h *BlogHandler) List(c *gin.Context) {
	var authorID uint
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid author")
			return
		}
		authorID = uint(id)
	}

	page := pageQuery(c)
	blogs, total, err := h.service.List(c.Request.Context(), authorID, page)
	if err != nil {
		renderError(c, err)
		return
	}
	paginated(c, "Get Blogs success", blogs, total, page)
}

func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	blog, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Get Single Blog success", blog)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	blog, err := h.service.Create(c.Request.Context(), jwt.GetUserID(c), req.input())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, "Create new blog success", blog)
}

func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	blog, err := h.service.Update(c.Request.Context(), jwt.GetUserID(c), id, req.input())
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Update Blog success", blog)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), jwt.GetUserID(c), id); err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Delete Blog success", nil)
}
