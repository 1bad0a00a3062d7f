package handler

import (
	"social-blog/internal/service"
	"social-blog/pkg/jwt"
	"social-blog/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

type authResponse struct {
	User        interface{} `json:"user"`
	AccessToken string      `json:"accessToken"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		AvatarURL string `json:"avatarUrl"`
		Password  string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Password:  req.Password,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, "Create user successful", authResponse{User: user, AccessToken: token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Login successful", authResponse{User: user, AccessToken: token})
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.service.VerifyEmail(c.Request.Context(), req.Code)
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Verify email success", authResponse{User: user, AccessToken: token})
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	profile, err := h.service.GetCurrentUser(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Get current user success", profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name      *string `json:"name"`
		AvatarURL *string `json:"avatarUrl"`
		Password  *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), jwt.GetUserID(c), service.UpdateProfileInput{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Password:  req.Password,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Update Profile success", user)
}

// ListUsers supports ?name= filtering and paging.
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := pageQuery(c)
	users, total, err := h.service.ListUsers(c.Request.Context(), jwt.GetUserID(c), c.Query("name"), page)
	if err != nil {
		renderError(c, err)
		return
	}
	paginated(c, "Get users success", users, total, page)
}
