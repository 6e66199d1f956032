package service

import (
	"context"

	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/repository"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/idgen"
	"gorm.io/gorm"
)

// ConversationService handles conversation, participant and unread logic
type ConversationService struct {
	convRepo   *repository.ConversationRepo
	msgRepo    *repository.MessageRepo
	unreadRepo *repository.UnreadRepo
	userRepo   *repository.UserRepo
	repos      *repository.Repositories
	pusher     FeedPusher
}

// NewConversationService creates a new ConversationService
func NewConversationService(repos *repository.Repositories) *ConversationService {
	return &ConversationService{
		convRepo:   repos.Conversation,
		msgRepo:    repos.Message,
		unreadRepo: repos.Unread,
		userRepo:   repos.User,
		repos:      repos,
	}
}

// SetPusher sets the feed pusher
func (s *ConversationService) SetPusher(pusher FeedPusher) {
	s.pusher = pusher
}

// MarkConversationRead zeroes the reader's unread counter and stamps read_at
// on every unread message the reader didn't send. This is the only path that
// resets the counter; viewing history never does. Calling it on an already
// read conversation is a no-op.
func (s *ConversationService) MarkConversationRead(ctx context.Context, userId, conversationId string) (*entity.UnreadInfo, error) {
	if conversationId == "" {
		return nil, errcode.ErrInvalidParam.WithFields("conversation_id")
	}

	ok, err := s.convRepo.IsParticipant(ctx, conversationId, userId)
	if err != nil {
		log.CtxError(ctx, "check participant failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if !ok {
		return nil, errcode.ErrNotParticipant
	}

	now := entity.NowUnixMilli()
	var changedIds []int64

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		ids, err := s.msgRepo.MarkConversationRead(ctx, tx, conversationId, userId, now)
		if err != nil {
			return err
		}
		changedIds = ids

		return s.unreadRepo.Reset(ctx, tx, userId, conversationId, now)
	})
	if err != nil {
		log.CtxError(ctx, "mark conversation read failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	s.pushReadUpdates(ctx, conversationId, changedIds)

	log.CtxInfo(ctx, "conversation read: user_id=%s, conversation_id=%s, messages=%d", userId, conversationId, len(changedIds))
	return &entity.UnreadInfo{
		ConversationId: conversationId,
		UnreadCount:    0,
		LastReadAt:     now,
	}, nil
}

// pushReadUpdates fans out the update events for messages whose read_at just
// flipped, so senders see their checkmarks move
func (s *ConversationService) pushReadUpdates(ctx context.Context, conversationId string, msgIds []int64) {
	if s.pusher == nil || len(msgIds) == 0 {
		return
	}

	messages, err := s.msgRepo.GetByIds(ctx, msgIds)
	if err != nil {
		log.CtxWarn(ctx, "reload read messages failed: %v", err)
		return
	}
	participantIds, err := s.convRepo.GetParticipantIds(ctx, conversationId)
	if err != nil || len(participantIds) == 0 {
		return
	}

	for _, m := range messages {
		s.pusher.AsyncPushToUsers(entity.MessageUpdate(m), participantIds, "")
	}
}

// GetUnreadCount returns the caller's unread count for one conversation
func (s *ConversationService) GetUnreadCount(ctx context.Context, userId, conversationId string) (*entity.UnreadInfo, error) {
	if conversationId == "" {
		return nil, errcode.ErrInvalidParam.WithFields("conversation_id")
	}

	ok, err := s.convRepo.IsParticipant(ctx, conversationId, userId)
	if err != nil {
		log.CtxError(ctx, "check participant failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if !ok {
		return nil, errcode.ErrNotParticipant
	}

	count, err := s.unreadRepo.Get(ctx, userId, conversationId)
	if err != nil {
		log.CtxError(ctx, "get unread count failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	info := &entity.UnreadInfo{
		ConversationId: conversationId,
		UnreadCount:    count,
	}
	if counter, err := s.unreadRepo.GetCounter(ctx, userId, conversationId); err == nil && counter != nil {
		info.LastReadAt = counter.LastReadAt
	}
	return info, nil
}

// UnreadTotal is the badge view: the grand total plus the non-zero
// per-conversation breakdown
type UnreadTotal struct {
	Total         int64                `json:"total"`
	Conversations []*entity.UnreadInfo `json:"conversations"`
}

// GetUnreadTotal sums the caller's unread counts across all conversations
func (s *ConversationService) GetUnreadTotal(ctx context.Context, userId string) (*UnreadTotal, error) {
	total, err := s.unreadRepo.GetTotal(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get unread total failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	counters, err := s.unreadRepo.ListByUser(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "list unread counters failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	infos := make([]*entity.UnreadInfo, 0, len(counters))
	for _, c := range counters {
		infos = append(infos, &entity.UnreadInfo{
			ConversationId: c.ConversationId,
			UnreadCount:    c.Count,
			LastReadAt:     c.LastReadAt,
		})
	}

	return &UnreadTotal{Total: total, Conversations: infos}, nil
}

// GetParticipants lists a conversation's members with profiles resolved
func (s *ConversationService) GetParticipants(ctx context.Context, userId, conversationId string) ([]*entity.ParticipantInfo, error) {
	ok, err := s.convRepo.IsParticipant(ctx, conversationId, userId)
	if err != nil {
		log.CtxError(ctx, "check participant failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if !ok {
		return nil, errcode.ErrNotParticipant
	}

	participants, err := s.convRepo.GetParticipants(ctx, conversationId)
	if err != nil {
		log.CtxError(ctx, "get participants failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	userIds := make([]string, 0, len(participants))
	for _, p := range participants {
		userIds = append(userIds, p.UserId)
	}
	users, err := s.userRepo.GetByIds(ctx, userIds)
	if err != nil {
		log.CtxError(ctx, "resolve participants failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	byId := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byId[u.Id] = u
	}

	infos := make([]*entity.ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		info := &entity.ParticipantInfo{
			UserId:   p.UserId,
			Role:     p.Role,
			JoinedAt: p.JoinedAt,
		}
		if u, ok := byId[p.UserId]; ok {
			info.Nickname = u.Nickname
			info.Avatar = u.Avatar
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// CreateGroupRequest represents group creation request
type CreateGroupRequest struct {
	Title     string   `json:"title"`
	MemberIds []string `json:"member_ids"`
}

// CreateGroup creates a group conversation with the caller as admin
func (s *ConversationService) CreateGroup(ctx context.Context, userId string, req *CreateGroupRequest) (*entity.Conversation, error) {
	if req.Title == "" {
		return nil, errcode.ErrInvalidParam.WithFields("title")
	}

	others := 0
	for _, id := range req.MemberIds {
		if id != userId {
			others++
		}
	}
	if others == 0 {
		return nil, errcode.ErrParticipantNeeded
	}

	// Every listed member must exist
	users, err := s.userRepo.GetByIds(ctx, req.MemberIds)
	if err != nil {
		log.CtxError(ctx, "resolve members failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if len(users) != len(dedupe(req.MemberIds)) {
		return nil, errcode.ErrUserNotFound
	}

	groupId, err := idgen.NextID()
	if err != nil {
		log.CtxError(ctx, "generate group id failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	conversationId := entity.GenGroupConversationId(groupId)

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		return s.convRepo.CreateGroup(ctx, tx, conversationId, req.Title, userId, req.MemberIds)
	})
	if err != nil {
		log.CtxError(ctx, "create group failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	conv, err := s.convRepo.GetById(ctx, conversationId)
	if err != nil || conv == nil {
		log.CtxError(ctx, "reload group failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "group created: conversation_id=%s, created_by=%s, members=%d", conversationId, userId, len(req.MemberIds))
	return conv, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
