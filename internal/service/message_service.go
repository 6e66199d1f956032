package service

import (
	"context"

	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/indicator"
	"github.com/openhrm/pulse/internal/repository"
	"github.com/openhrm/pulse/pkg/constant"
	"github.com/openhrm/pulse/pkg/errcode"
	"gorm.io/gorm"
)

// MessageService handles message-related business logic
type MessageService struct {
	msgRepo    *repository.MessageRepo
	convRepo   *repository.ConversationRepo
	unreadRepo *repository.UnreadRepo
	userRepo   *repository.UserRepo
	repos      *repository.Repositories
	indicators *indicator.Store
	notifSvc   *NotificationService
	pusher     FeedPusher
}

// NewMessageService creates a new MessageService
func NewMessageService(repos *repository.Repositories, indicators *indicator.Store, notifSvc *NotificationService) *MessageService {
	return &MessageService{
		msgRepo:    repos.Message,
		convRepo:   repos.Conversation,
		unreadRepo: repos.Unread,
		userRepo:   repos.User,
		repos:      repos,
		indicators: indicators,
		notifSvc:   notifSvc,
	}
}

// SetPusher sets the feed pusher
func (s *MessageService) SetPusher(pusher FeedPusher) {
	s.pusher = pusher
}

// SendMessageRequest represents send message request
type SendMessageRequest struct {
	ClientMsgId    string `json:"client_msg_id"`
	RecvId         string `json:"recv_id,omitempty"`         // For direct chat
	ConversationId string `json:"conversation_id,omitempty"` // For group chat
	MsgType        int32  `json:"msg_type"`
	Body           string `json:"body"`
}

// SendMessage persists a message and fans it out. Direct chats are created
// lazily on the first message. Resending the same client_msg_id returns the
// original row instead of a duplicate.
func (s *MessageService) SendMessage(ctx context.Context, senderId string, req *SendMessageRequest) (*entity.Message, error) {
	if req.ClientMsgId == "" {
		return nil, errcode.ErrInvalidParam.WithFields("client_msg_id")
	}
	if req.Body == "" {
		return nil, errcode.ErrInvalidParam.WithFields("body")
	}
	if req.RecvId == "" && req.ConversationId == "" {
		return nil, errcode.ErrInvalidParam.WithFields("recv_id", "conversation_id")
	}
	if req.RecvId == senderId {
		return nil, errcode.ErrInvalidParam.WithFields("recv_id")
	}

	existingMsg, err := s.msgRepo.GetByClientMsgId(ctx, senderId, req.ClientMsgId)
	if err != nil {
		log.CtxError(ctx, "check idempotency failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if existingMsg != nil {
		log.CtxDebug(ctx, "duplicate message: client_msg_id=%s", req.ClientMsgId)
		return existingMsg, nil
	}

	conversationId := req.ConversationId
	if conversationId == "" {
		conversationId = entity.GenDirectConversationId(senderId, req.RecvId)
	}

	// Group targets must already exist with the sender as a member. Direct
	// chats are ensured inside the send transaction.
	if req.ConversationId != "" && !entity.IsDirectConversation(conversationId) {
		ok, err := s.convRepo.IsParticipant(ctx, conversationId, senderId)
		if err != nil {
			log.CtxError(ctx, "check participant failed: %v", err)
			return nil, errcode.ErrInternalServer
		}
		if !ok {
			return nil, errcode.ErrNotParticipant
		}
	}

	msgType := req.MsgType
	if msgType == 0 {
		msgType = constant.MsgTypeText
	}

	var msg *entity.Message
	var recipientIds []string

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		if entity.IsDirectConversation(conversationId) {
			peerA, peerB, ok := entity.DirectConversationPeers(conversationId)
			if !ok {
				return errcode.ErrInvalidParam.WithFields("conversation_id")
			}
			if peerA != senderId && peerB != senderId {
				return errcode.ErrNotParticipant
			}
			if _, err := s.convRepo.EnsureDirectConversation(ctx, tx, peerA, peerB); err != nil {
				return err
			}
		}

		msg = &entity.Message{
			ConversationId: conversationId,
			ClientMsgId:    req.ClientMsgId,
			SenderId:       senderId,
			MsgType:        msgType,
			Body:           req.Body,
		}
		if err := s.msgRepo.Create(ctx, tx, msg); err != nil {
			return err
		}

		participantIds, err := s.convRepo.GetParticipantIds(ctx, conversationId)
		if err != nil {
			return err
		}
		for _, id := range participantIds {
			if id == senderId {
				continue
			}
			recipientIds = append(recipientIds, id)
		}

		// Each recipient's counter bumps exactly once per persisted message.
		for _, id := range recipientIds {
			if _, err := s.unreadRepo.Increment(ctx, id, conversationId); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if e, ok := err.(*errcode.Error); ok {
			return nil, e
		}
		log.CtxError(ctx, "send message failed: %v", err)
		return nil, errcode.ErrSendFailed
	}

	// The sender's indicator pulses, restarting if already lit.
	s.indicators.Activate(msg.SenderId)

	s.fanOutNewMessage(ctx, msg, recipientIds)

	log.CtxInfo(ctx, "message sent: sender_id=%s, conversation_id=%s, id=%d", senderId, conversationId, msg.Id)
	return msg, nil
}

// fanOutNewMessage pushes the insert event to everyone in the conversation
// and leaves a notification row for recipients with no live connection
func (s *MessageService) fanOutNewMessage(ctx context.Context, msg *entity.Message, recipientIds []string) {
	if s.pusher != nil {
		targets := append([]string{msg.SenderId}, recipientIds...)
		s.pusher.AsyncPushToUsers(entity.MessageInsert(msg), targets, "")
	}

	for _, id := range recipientIds {
		online := s.pusher != nil && s.pusher.IsOnline(id)
		if online {
			continue
		}
		if err := s.notifSvc.CreateMessageNotification(ctx, id, msg); err != nil {
			log.CtxWarn(ctx, "offline notification failed: user_id=%s, msg_id=%d, err=%v", id, msg.Id, err)
		}
	}
}

// MarkDelivered stamps a message delivered on behalf of userId. Only a
// recipient can acknowledge; repeat acknowledgements return the unchanged
// row.
func (s *MessageService) MarkDelivered(ctx context.Context, userId string, msgId int64) (*entity.Message, error) {
	msg, err := s.authorizeRecipient(ctx, userId, msgId)
	if err != nil {
		return nil, err
	}

	changed, err := s.msgRepo.MarkDelivered(ctx, msgId, entity.NowUnixMilli())
	if err != nil {
		log.CtxError(ctx, "mark delivered failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	if !changed {
		return msg, nil
	}
	return s.reloadAndPushUpdate(ctx, msgId)
}

// MarkRead stamps a message read on behalf of userId, backfilling the
// delivered timestamp when needed
func (s *MessageService) MarkRead(ctx context.Context, userId string, msgId int64) (*entity.Message, error) {
	msg, err := s.authorizeRecipient(ctx, userId, msgId)
	if err != nil {
		return nil, err
	}

	changed, err := s.msgRepo.MarkRead(ctx, msgId, entity.NowUnixMilli())
	if err != nil {
		log.CtxError(ctx, "mark read failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	if !changed {
		return msg, nil
	}
	return s.reloadAndPushUpdate(ctx, msgId)
}

// EditMessage updates the body of the sender's own message and stamps
// edited_at
func (s *MessageService) EditMessage(ctx context.Context, userId string, msgId int64, body string) (*entity.Message, error) {
	if body == "" {
		return nil, errcode.ErrInvalidParam.WithFields("body")
	}

	msg, err := s.msgRepo.GetById(ctx, msgId)
	if err != nil {
		log.CtxError(ctx, "get message failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if msg == nil {
		return nil, errcode.ErrMessageNotFound
	}
	if msg.SenderId != userId {
		return nil, errcode.ErrNotMessageSender
	}

	if err := s.msgRepo.MarkEdited(ctx, msgId, body, entity.NowUnixMilli()); err != nil {
		log.CtxError(ctx, "edit message failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	return s.reloadAndPushUpdate(ctx, msgId)
}

// HistoryRequest represents message history request
type HistoryRequest struct {
	ConversationId string `json:"conversation_id"`
	Limit          int    `json:"limit"`
	Offset         int    `json:"offset"`
}

// History pages through a conversation's messages, newest first. Reading
// history never touches unread counters: only the explicit conversation-read
// operation does.
func (s *MessageService) History(ctx context.Context, userId string, req *HistoryRequest) ([]*entity.MessageInfo, int64, error) {
	if req.ConversationId == "" {
		return nil, 0, errcode.ErrInvalidParam.WithFields("conversation_id")
	}

	ok, err := s.convRepo.IsParticipant(ctx, req.ConversationId, userId)
	if err != nil {
		log.CtxError(ctx, "check participant failed: %v", err)
		return nil, 0, errcode.ErrInternalServer
	}
	if !ok {
		return nil, 0, errcode.ErrNotParticipant
	}

	messages, err := s.msgRepo.History(ctx, req.ConversationId, req.Limit, req.Offset)
	if err != nil {
		log.CtxError(ctx, "pull history failed: %v", err)
		return nil, 0, errcode.ErrInternalServer
	}

	total, err := s.msgRepo.CountByConversation(ctx, req.ConversationId)
	if err != nil {
		log.CtxError(ctx, "count messages failed: %v", err)
		return nil, 0, errcode.ErrInternalServer
	}

	infos := make([]*entity.MessageInfo, 0, len(messages))
	for _, m := range messages {
		infos = append(infos, m.ToMessageInfo())
	}
	return infos, total, nil
}

// Receipt returns the delivery/read receipt for one message. Only the
// conversation's participants may look.
func (s *MessageService) Receipt(ctx context.Context, userId string, msgId int64) (*entity.ReadReceipt, error) {
	msg, err := s.msgRepo.GetById(ctx, msgId)
	if err != nil {
		log.CtxError(ctx, "get message failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if msg == nil {
		return nil, errcode.ErrMessageNotFound
	}

	if msg.SenderId != userId {
		ok, err := s.convRepo.IsParticipant(ctx, msg.ConversationId, userId)
		if err != nil {
			log.CtxError(ctx, "check participant failed: %v", err)
			return nil, errcode.ErrInternalServer
		}
		if !ok {
			return nil, errcode.ErrNotParticipant
		}
	}

	return msg.ToReadReceipt(), nil
}

// authorizeRecipient loads the message and checks userId may acknowledge it:
// a participant of the conversation who is not the sender
func (s *MessageService) authorizeRecipient(ctx context.Context, userId string, msgId int64) (*entity.Message, error) {
	msg, err := s.msgRepo.GetById(ctx, msgId)
	if err != nil {
		log.CtxError(ctx, "get message failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if msg == nil {
		return nil, errcode.ErrMessageNotFound
	}
	if msg.SenderId == userId {
		return nil, errcode.ErrNoPermission
	}

	ok, err := s.convRepo.IsParticipant(ctx, msg.ConversationId, userId)
	if err != nil {
		log.CtxError(ctx, "check participant failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if !ok {
		return nil, errcode.ErrNotParticipant
	}

	return msg, nil
}

// reloadAndPushUpdate fetches the fresh row and pushes the update event to
// all participants
func (s *MessageService) reloadAndPushUpdate(ctx context.Context, msgId int64) (*entity.Message, error) {
	msg, err := s.msgRepo.GetById(ctx, msgId)
	if err != nil || msg == nil {
		log.CtxError(ctx, "reload message failed: id=%d, err=%v", msgId, err)
		return nil, errcode.ErrInternalServer
	}

	if s.pusher != nil {
		participantIds, err := s.convRepo.GetParticipantIds(ctx, msg.ConversationId)
		if err == nil && len(participantIds) > 0 {
			s.pusher.AsyncPushToUsers(entity.MessageUpdate(msg), participantIds, "")
		}
	}

	return msg, nil
}
