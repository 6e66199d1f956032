package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/internal/config"
	"github.com/openhrm/pulse/internal/feed"
	"github.com/openhrm/pulse/internal/handler"
	"github.com/openhrm/pulse/internal/repository"
	"github.com/openhrm/pulse/internal/router"
	"github.com/openhrm/pulse/internal/service"
	"github.com/openhrm/pulse/pkg/constant"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}

	log.CtxInfo(ctx, "config loaded: mode=%s", cfg.Server.Mode)

	// Initialize Redis key prefix
	constant.InitRedisKeyPrefix(cfg.Redis.KeyPrefix)
	log.CtxInfo(ctx, "redis key prefix: %s", constant.GetRedisKeyPrefix())

	// Initialize repositories
	repos, err := repository.NewRepositories(cfg)
	if err != nil {
		log.CtxError(ctx, "failed to initialize repositories: %v", err)
		panic(err)
	}
	defer repos.Close()

	// Check database connection
	if err := repos.CheckConnection(ctx); err != nil {
		log.CtxError(ctx, "database connection check failed: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "database connection established")

	// Initialize services
	svcs := service.NewServices(cfg, repos)

	// Initialize feed server and wire it back into the services
	feedServer := feed.NewFeedServer(cfg, repos.Redis, svcs)
	svcs.SetPusher(feedServer)

	// Start feed server loops
	feedServer.Run(ctx)
	log.CtxInfo(ctx, "feed server started")

	// Initialize handlers
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(svcs.Auth),
		User:         handler.NewUserHandler(svcs.User),
		Message:      handler.NewMessageHandler(svcs.Message),
		Conversation: handler.NewConversationHandler(svcs.Conversation),
		Typing:       handler.NewTypingHandler(svcs.Typing),
		Notification: handler.NewNotificationHandler(svcs.Notification),
	}

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.HTTPPort)),
	)

	// Setup routes
	router.SetupRouter(h, handlers, feedServer, svcs.Auth)

	log.CtxInfo(ctx, "server starting on port %d", cfg.Server.HTTPPort)

	// Start server in goroutine
	go func() {
		h.Spin()
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.CtxInfo(ctx, "shutting down server...")

	// Graceful shutdown
	if err := h.Shutdown(ctx); err != nil {
		log.CtxError(ctx, "server shutdown error: %v", err)
	}

	svcs.Typing.Shutdown()
	svcs.Indicator.Cleanup()
	cancel()

	log.CtxInfo(ctx, "server stopped")
}
