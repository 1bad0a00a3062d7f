package handler

import (
	"social-blog/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	User      *UserHandler
	Friend    *FriendHandler
	Reaction  *ReactionHandler
	Blog      *BlogHandler
	Review    *ReviewHandler
	Health    *HealthHandler
	WebSocket gin.HandlerFunc
}

// RegisterRoutes mounts the API under /api/v1. Everything except login,
// registration, email verification and the public blog reads requires a
// token.
func RegisterRoutes(r *gin.Engine, h Handlers, jwtService *jwt.JWTService) {
	if h.Health != nil {
		r.GET("/health", h.Health.Health)
	}

	v1 := r.Group("/api/v1")
	auth := jwtService.AuthMiddleware()

	if h.Health != nil {
		v1.GET("/health", h.Health.Health)
	}

	v1.POST("/auth/login", h.User.Login)
	v1.POST("/users", h.User.Register)
	v1.POST("/users/verify", h.User.VerifyEmail)
	v1.GET("/blogs", h.Blog.List)
	v1.GET("/blogs/:id", h.Blog.Get)

	protected := v1.Group("")
	protected.Use(auth)
	{
		users := protected.Group("/users")
		users.GET("", h.User.ListUsers)
		users.GET("/me", h.User.GetCurrentUser)
		users.PUT("/me", h.User.UpdateProfile)

		friends := protected.Group("/friends")
		friends.GET("", h.Friend.ListFriends())
		friends.DELETE("/:id", h.Friend.RemoveFriend)
		friends.GET("/add", h.Friend.ListOutgoing())
		friends.POST("/add/:id", h.Friend.SendRequest)
		friends.DELETE("/add/:id", h.Friend.CancelRequest)
		friends.GET("/manage", h.Friend.ListIncoming())
		friends.POST("/manage/:id", h.Friend.AcceptRequest)
		friends.DELETE("/manage/:id", h.Friend.DeclineRequest)

		protected.POST("/reactions", h.Reaction.Toggle)

		protected.POST("/blogs", h.Blog.Create)
		protected.PUT("/blogs/:id", h.Blog.Update)
		protected.DELETE("/blogs/:id", h.Blog.Delete)

		protected.POST("/reviews/blogs/:id", h.Review.Create)
		protected.PUT("/reviews/:id", h.Review.Update)
		protected.DELETE("/reviews/:id", h.Review.Delete)

		if h.WebSocket != nil {
			protected.GET("/ws", h.WebSocket)
		}
	}
}
