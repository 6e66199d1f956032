package service

import (
	"github.com/openhrm/pulse/internal/config"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/indicator"
	"github.com/openhrm/pulse/internal/repository"
)

// FeedPusher delivers change events to connected clients. The feed server
// implements it; services only see the interface so the dependency points
// one way.
type FeedPusher interface {
	AsyncPushToUsers(event *entity.ChangeEvent, userIds []string, excludeConnId string)
	IsOnline(userId string) bool
}

// Services holds all services
type Services struct {
	Auth         *AuthService
	User         *UserService
	Message      *MessageService
	Conversation *ConversationService
	Typing       *TypingService
	Notification *NotificationService
	Indicator    *indicator.Store
}

// NewServices creates all services
func NewServices(cfg *config.Config, repos *repository.Repositories) *Services {
	indicatorStore := indicator.NewStore(cfg.Indicator.Duration)
	retryPolicy := cfg.Retry.Policy()

	notification := NewNotificationService(repos)
	message := NewMessageService(repos, indicatorStore, notification)
	conversation := NewConversationService(repos)
	typing := NewTypingService(repos, retryPolicy)

	return &Services{
		Auth:         NewAuthService(cfg, repos),
		User:         NewUserService(repos),
		Message:      message,
		Conversation: conversation,
		Typing:       typing,
		Notification: notification,
		Indicator:    indicatorStore,
	}
}

// SetPusher wires the feed server into every service that fans out events.
// Called once at startup, after the feed server exists.
func (s *Services) SetPusher(pusher FeedPusher) {
	s.Message.SetPusher(pusher)
	s.Conversation.SetPusher(pusher)
	s.Typing.SetPusher(pusher)
	s.Notification.SetPusher(pusher)
}
