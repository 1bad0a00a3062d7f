package handler

import (
	"context"

	"social-blog/internal/repository"
	"social-blog/internal/service"
	"social-blog/pkg/jwt"
	"social-blog/pkg/response"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	service *service.FriendshipService
}

func NewFriendHandler(s *service.FriendshipService) *FriendHandler {
	return &FriendHandler{service: s}
}

// SendRequest handles POST /friends/add/:id.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	to, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, err := h.service.SendRequest(c.Request.Context(), jwt.GetUserID(c), to)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Friend Request has been sent", f)
}

// CancelRequest handles DELETE /friends/add/:id.
func (h *FriendHandler) CancelRequest(c *gin.Context) {
	to, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, err := h.service.CancelRequest(c.Request.Context(), jwt.GetUserID(c), to)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Friend request has been cancelled", f)
}

// AcceptRequest handles POST /friends/manage/:id.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	from, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, err := h.service.AcceptRequest(c.Request.Context(), jwt.GetUserID(c), from)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Accept Friend Request success", f)
}

// DeclineRequest handles DELETE /friends/manage/:id.
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	from, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeclineRequest(c.Request.Context(), jwt.GetUserID(c), from); err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Decline Friend request success", nil)
}

// RemoveFriend handles DELETE /friends/:id.
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	other, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, err := h.service.RemoveFriendship(c.Request.Context(), jwt.GetUserID(c), other)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Friend has been removed", f)
}

type friendLister func(ctx context.Context, userID uint, page repository.Page) ([]service.UserWithFriendship, int64, error)

func (h *FriendHandler) list(message string, fn friendLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageQuery(c)
		users, total, err := fn(c.Request.Context(), jwt.GetUserID(c), page)
		if err != nil {
			renderError(c, err)
			return
		}
		paginated(c, message, users, total, page)
	}
}

func (h *FriendHandler) ListFriends() gin.HandlerFunc {
	return h.list("Get friend list success", h.service.ListFriends)
}

func (h *FriendHandler) ListOutgoing() gin.HandlerFunc {
	return h.list("Get sent requests success", h.service.ListOutgoing)
}

func (h *FriendHandler) ListIncoming() gin.HandlerFunc {
	return h.list("Get received requests success", h.service.ListIncoming)
}
