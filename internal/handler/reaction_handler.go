package handler

import (
	"social-blog/internal/model"
	"social-blog/internal/service"
	"social-blog/pkg/jwt"
	"social-blog/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	service *service.ReactionService
}

func NewReactionHandler(s *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: s}
}

// Toggle handles POST /reactions and answers with the target's summary.
func (h *ReactionHandler) Toggle(c *gin.Context) {
	var req struct {
		TargetType string `json:"targetType" binding:"required"`
		TargetID   uint   `json:"targetId" binding:"required"`
		Emoji      string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.Toggle(c.Request.Context(), jwt.GetUserID(c),
		model.TargetType(req.TargetType), req.TargetID, model.Emoji(req.Emoji))
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, res.Action.Message(), res.Summary)
}
