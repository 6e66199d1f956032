package service

import (
	"context"
	"strconv"

	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/repository"
	"github.com/openhrm/pulse/pkg/constant"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/idgen"
	"gorm.io/gorm"
)

// NotificationService handles notification fan-out and read state
type NotificationService struct {
	notifRepo *repository.NotificationRepo
	userRepo  *repository.UserRepo
	repos     *repository.Repositories
	pusher    FeedPusher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repos *repository.Repositories) *NotificationService {
	return &NotificationService{
		notifRepo: repos.Notification,
		userRepo:  repos.User,
		repos:     repos,
	}
}

// SetPusher sets the feed pusher
func (s *NotificationService) SetPusher(pusher FeedPusher) {
	s.pusher = pusher
}

// CreateNotificationRequest represents notification creation request
type CreateNotificationRequest struct {
	UserId string  `json:"user_id"`
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Body   string  `json:"body"`
	RefId  string  `json:"ref_id,omitempty"`
	Extra  *string `json:"extra,omitempty"`
}

// Create persists a notification for a user and pushes it to their live
// connections. The type must belong to the closed enumeration; anything else
// is rejected here, at the boundary, not discovered later by a renderer.
func (s *NotificationService) Create(ctx context.Context, req *CreateNotificationRequest) (*entity.Notification, error) {
	if req.UserId == "" {
		return nil, errcode.ErrInvalidParam.WithFields("user_id")
	}
	if !constant.IsValidNotificationType(req.Type) {
		return nil, errcode.ErrInvalidNotifType.WithFields("type")
	}
	if req.Title == "" {
		return nil, errcode.ErrInvalidParam.WithFields("title")
	}

	user, err := s.userRepo.GetById(ctx, req.UserId)
	if err != nil {
		log.CtxError(ctx, "resolve notification target failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if user == nil {
		return nil, errcode.ErrUserNotFound
	}

	n := &entity.Notification{
		UserId: req.UserId,
		Type:   req.Type,
		Title:  req.Title,
		Body:   req.Body,
		RefId:  req.RefId,
		Extra:  req.Extra,
	}
	if err := s.create(ctx, n); err != nil {
		return nil, err
	}

	log.CtxInfo(ctx, "notification created: user_id=%s, type=%s, id=%d", n.UserId, n.Type, n.Id)
	return n, nil
}

// CreateMessageNotification leaves a message-type notification for a
// recipient with no live connection, so the send is visible next login
func (s *NotificationService) CreateMessageNotification(ctx context.Context, userId string, msg *entity.Message) error {
	sender, err := s.userRepo.GetById(ctx, msg.SenderId)
	if err != nil {
		return err
	}
	senderName := msg.SenderId
	if sender != nil && sender.Nickname != "" {
		senderName = sender.Nickname
	}

	n := &entity.Notification{
		UserId: userId,
		Type:   constant.NotificationTypeMessage,
		Title:  "New message from " + senderName,
		Body:   msg.Body,
		RefId:  strconv.FormatInt(msg.Id, 10),
	}
	return s.create(ctx, n)
}

func (s *NotificationService) create(ctx context.Context, n *entity.Notification) error {
	id, err := idgen.NextID()
	if err != nil {
		log.CtxError(ctx, "generate notification id failed: %v", err)
		return errcode.ErrInternalServer
	}
	n.Id, err = strconv.ParseInt(id, 10, 64)
	if err != nil {
		log.CtxError(ctx, "parse notification id failed: %v", err)
		return errcode.ErrInternalServer
	}

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		return s.notifRepo.Create(ctx, tx, n)
	})
	if err != nil {
		log.CtxError(ctx, "create notification failed: %v", err)
		return errcode.ErrInternalServer
	}

	if s.pusher != nil {
		s.pusher.AsyncPushToUsers(entity.NotificationInsert(n), []string{n.UserId}, "")
	}
	return nil
}

// ListRequest represents notification list request
type ListRequest struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

// List pages through the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userId string, req *ListRequest) ([]*entity.Notification, error) {
	notifications, err := s.notifRepo.ListByUser(ctx, userId, req.UnreadOnly, req.Limit, req.Offset)
	if err != nil {
		log.CtxError(ctx, "list notifications failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	return notifications, nil
}

// UnreadCount counts the caller's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userId string) (int64, error) {
	count, err := s.notifRepo.CountUnread(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "count unread notifications failed: %v", err)
		return 0, errcode.ErrInternalServer
	}
	return count, nil
}

// MarkRead flips one of the caller's notifications to read. Marking an
// already read notification returns it unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, userId string, id int64) (*entity.Notification, error) {
	n, err := s.notifRepo.GetById(ctx, id)
	if err != nil {
		log.CtxError(ctx, "get notification failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if n == nil || n.UserId != userId {
		return nil, errcode.ErrNotificationNotFound
	}
	if n.Read {
		return n, nil
	}

	changed, err := s.notifRepo.MarkRead(ctx, id, userId, entity.NowUnixMilli())
	if err != nil {
		log.CtxError(ctx, "mark notification read failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if !changed {
		return n, nil
	}

	n, err = s.notifRepo.GetById(ctx, id)
	if err != nil || n == nil {
		log.CtxError(ctx, "reload notification failed: id=%d, err=%v", id, err)
		return nil, errcode.ErrInternalServer
	}

	if s.pusher != nil {
		s.pusher.AsyncPushToUsers(entity.NotificationUpdate(n), []string{userId}, "")
	}
	return n, nil
}

// MarkAllRead flips every unread notification of the caller, returning how
// many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	changed, err := s.notifRepo.MarkAllRead(ctx, userId, entity.NowUnixMilli())
	if err != nil {
		log.CtxError(ctx, "mark all notifications read failed: %v", err)
		return 0, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "notifications read_all: user_id=%s, changed=%d", userId, changed)
	return changed, nil
}

// Delete removes one of the caller's notifications
func (s *NotificationService) Delete(ctx context.Context, userId string, id int64) error {
	n, err := s.notifRepo.GetById(ctx, id)
	if err != nil {
		log.CtxError(ctx, "get notification failed: %v", err)
		return errcode.ErrInternalServer
	}
	if n == nil || n.UserId != userId {
		return errcode.ErrNotificationNotFound
	}

	removed, err := s.notifRepo.Delete(ctx, id, userId)
	if err != nil {
		log.CtxError(ctx, "delete notification failed: %v", err)
		return errcode.ErrInternalServer
	}
	if !removed {
		return errcode.ErrNotificationNotFound
	}

	if s.pusher != nil {
		s.pusher.AsyncPushToUsers(entity.NotificationDelete(n), []string{userId}, "")
	}
	return nil
}

// RegisterPushToken stores a device token for the caller, replacing the
// previous token for the same platform
func (s *NotificationService) RegisterPushToken(ctx context.Context, userId string, platformId int, token string) error {
	if token == "" {
		return errcode.ErrInvalidParam.WithFields("token")
	}
	if constant.PlatformIdToName(platformId) == "Unknown" {
		return errcode.ErrInvalidParam.WithFields("platform_id")
	}

	err := s.notifRepo.UpsertPushToken(ctx, &entity.PushToken{
		UserId:     userId,
		PlatformId: platformId,
		Token:      token,
	})
	if err != nil {
		log.CtxError(ctx, "register push token failed: %v", err)
		return errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "push token registered: user_id=%s, platform=%s", userId, constant.PlatformIdToName(platformId))
	return nil
}
