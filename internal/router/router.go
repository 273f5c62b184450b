package router

import (
	"Vibe_Tribe/internal/handler"
	"Vibe_Tribe/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User         *handler.UserHandler
	Community    *handler.CommunityHandler
	Conversation *handler.ConversationHandler
	Event        *handler.EventHandler
	Feed         *handler.FeedHandler
}

func InitRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.POST("/login", h.User.Login)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", h.User.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", h.User.Logout)
		authGroup.POST("/change-password", h.User.ChangePassword)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/community")
	{
		communityGroup.GET("/list", h.Community.List)
	}
	communityAuth := r.Group("/api/community")
	communityAuth.Use(middleware.AuthMiddleware())
	{
		communityAuth.POST("/create", h.Community.Create)
		communityAuth.POST("/join", h.Community.Join)
		communityAuth.POST("/:id/leave", h.Community.Leave)
		communityAuth.POST("/:id/invite", h.Community.Invite)
	}

	// 会话相关接口
	conversationGroup := r.Group("/api/conversation")
	conversationGroup.Use(middleware.AuthMiddleware())
	{
		conversationGroup.POST("/create", h.Conversation.Create)
		conversationGroup.POST("/:id/reply", h.Conversation.Reply)
		conversationGroup.DELETE("/:id", h.Conversation.Delete)
	}

	// 活动相关接口
	eventGroup := r.Group("/api/event")
	{
		eventGroup.GET("/:id/guests", h.Event.Guests)
	}
	eventAuth := r.Group("/api/event")
	eventAuth.Use(middleware.AuthMiddleware())
	{
		eventAuth.POST("/create", h.Event.Create)
		eventAuth.POST("/:id/rsvp", h.Event.RSVP)
	}

	// feed 与圈子：匿名可访问，身份可选
	feedGroup := r.Group("/api")
	feedGroup.Use(middleware.OptionalAuth())
	{
		feedGroup.GET("/feed", h.Feed.Feed)
		feedGroup.GET("/circle/scope", h.Feed.Scope)
	}

	return r
}
