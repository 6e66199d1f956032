package router

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/websocket"
	"github.com/openhrm/pulse/internal/config"
	"github.com/openhrm/pulse/internal/feed"
	"github.com/openhrm/pulse/internal/handler"
	"github.com/openhrm/pulse/internal/middleware"
	"github.com/openhrm/pulse/pkg/constant"
)

// SetupRouter sets up all routes
func SetupRouter(h *server.Hertz, handlers *Handlers, feedServer *feed.FeedServer, auth middleware.TokenValidator) {
	cfg := config.GlobalConfig
	authed := middleware.JWTAuth(auth)

	// CORS middleware
	h.Use(middleware.CORS())

	// Health check
	h.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes (no auth required)
	authGroup := h.Group("/auth")
	{
		authGroup.POST("/register", handlers.Auth.Register)
		authGroup.POST("/login", handlers.Auth.Login)
	}

	// Authenticated auth routes
	authedAuthGroup := h.Group("/auth", authed)
	{
		authedAuthGroup.POST("/logout", handlers.Auth.Logout)
		authedAuthGroup.POST("/provision",
			middleware.RequireRole(constant.RoleHR, constant.RoleAdmin),
			handlers.Auth.Provision)
	}

	// User routes (auth required)
	userGroup := h.Group("/user", authed)
	{
		userGroup.GET("/info", handlers.User.GetSelf)
		userGroup.GET("/info/:id", handlers.User.GetUser)
		userGroup.GET("/batch", handlers.User.GetUsers)
		userGroup.PUT("/update", handlers.User.UpdateInfo)
		userGroup.PUT("/password", handlers.User.ChangePassword)
	}

	// Message routes (auth required)
	msgGroup := h.Group("/msg", authed)
	{
		msgGroup.POST("/send", handlers.Message.SendMessage)
		msgGroup.GET("/history", handlers.Message.History)
		msgGroup.POST("/:id/delivered", handlers.Message.MarkDelivered)
		msgGroup.POST("/:id/read", handlers.Message.MarkRead)
		msgGroup.PUT("/:id/edit", handlers.Message.EditMessage)
		msgGroup.GET("/:id/receipt", handlers.Message.Receipt)
	}

	// Conversation routes (auth required)
	convGroup := h.Group("/conversation", authed)
	{
		convGroup.POST("/mark_read", handlers.Conversation.MarkRead)
		convGroup.GET("/unread_count", handlers.Conversation.UnreadCount)
		convGroup.GET("/unread_total", handlers.Conversation.UnreadTotal)
		convGroup.GET("/:id/participants", handlers.Conversation.Participants)
		convGroup.POST("/group", handlers.Conversation.CreateGroup)
	}

	// Typing routes (auth required)
	typingGroup := h.Group("/typing", authed)
	{
		typingGroup.POST("/start", handlers.Typing.Start)
		typingGroup.POST("/stop", handlers.Typing.Stop)
		typingGroup.GET("/:conversation_id", handlers.Typing.List)
	}

	// Notification routes (auth required)
	notifGroup := h.Group("/notification", authed)
	{
		notifGroup.POST("/create",
			middleware.RequireRole(constant.RoleHR, constant.RoleAdmin),
			handlers.Notification.Create)
		notifGroup.GET("/list", handlers.Notification.List)
		notifGroup.GET("/unread_count", handlers.Notification.UnreadCount)
		notifGroup.POST("/:id/read", handlers.Notification.MarkRead)
		notifGroup.POST("/read_all", handlers.Notification.ReadAll)
		notifGroup.DELETE("/:id", handlers.Notification.Delete)
		notifGroup.POST("/push_token", handlers.Notification.PushToken)
	}

	// WebSocket route using hertz-contrib/websocket with proper origin validation
	allowedOrigins := cfg.Server.AllowedOrigins
	upgrader := &websocket.HertzUpgrader{
		CheckOrigin: func(ctx *app.RequestContext) bool {
			return checkOrigin(ctx, allowedOrigins)
		},
	}

	h.GET("/ws", func(ctx context.Context, c *app.RequestContext) {
		feedServer.HandleHertzConnection(ctx, c, upgrader)
	})
}

// checkOrigin validates the Origin header against allowed origins
func checkOrigin(ctx *app.RequestContext, allowedOrigins []string) bool {
	origin := string(ctx.Request.Header.Peek("Origin"))

	// If no origin header, allow (same-origin request or non-browser client)
	if origin == "" {
		return true
	}

	// If no allowed origins configured, reject all cross-origin requests in production
	if len(allowedOrigins) == 0 {
		return false
	}

	// Check against allowed origins
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			// Wildcard - allow all (only use in development!)
			return true
		}
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}

	return false
}

// Handlers holds all HTTP handlers
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Message      *handler.MessageHandler
	Conversation *handler.ConversationHandler
	Typing       *handler.TypingHandler
	Notification *handler.NotificationHandler
}
