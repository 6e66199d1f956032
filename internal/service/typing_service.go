package service

import (
	"context"
	"sync"
	"time"

	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/repository"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/retry"
)

// TypingService handles the ephemeral typing-status channel. Redis holds the
// records with their expiry; this service additionally keeps a local timer
// per active typist so clients that never send stop still get a delete event
// when the record lapses.
type TypingService struct {
	typingRepo *repository.TypingRepo
	convRepo   *repository.ConversationRepo
	userRepo   *repository.UserRepo
	retryP     retry.Policy
	pusher     FeedPusher

	mu     sync.Mutex
	timers map[string]*time.Timer // conversationId + "\x00" + userId
}

// NewTypingService creates a new TypingService
func NewTypingService(repos *repository.Repositories, retryP retry.Policy) *TypingService {
	return &TypingService{
		typingRepo: repos.Typing,
		convRepo:   repos.Conversation,
		userRepo:   repos.User,
		retryP:     retryP,
		timers:     make(map[string]*time.Timer),
	}
}

// SetPusher sets the feed pusher
func (s *TypingService) SetPusher(pusher FeedPusher) {
	s.pusher = pusher
}

// TTL returns the typing time-to-live
func (s *TypingService) TTL() time.Duration {
	return s.typingRepo.TTL()
}

func timerKey(conversationId, userId string) string {
	return conversationId + "\x00" + userId
}

// Start records that userId is typing. Called repeatedly while the user
// types, each call pushes the expiry forward; it never creates a second
// record for the same user.
func (s *TypingService) Start(ctx context.Context, userId, conversationId string) (*entity.TypingStatus, error) {
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

	var status *entity.TypingStatus
	err = retry.Do(ctx, s.retryP, func(ctx context.Context) error {
		var err error
		status, err = s.typingRepo.Start(ctx, conversationId, userId)
		return err
	})
	if err != nil {
		log.CtxError(ctx, "typing start failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	s.armExpiry(conversationId, userId)
	s.pushToOthers(ctx, conversationId, userId, entity.TypingInsert(status))

	return status, nil
}

// Stop removes userId's typing record. Stopping when not typing is a no-op.
func (s *TypingService) Stop(ctx context.Context, userId, conversationId string) error {
	if conversationId == "" {
		return errcode.ErrInvalidParam.WithFields("conversation_id")
	}

	ok, err := s.convRepo.IsParticipant(ctx, conversationId, userId)
	if err != nil {
		log.CtxError(ctx, "check participant failed: %v", err)
		return errcode.ErrInternalServer
	}
	if !ok {
		return errcode.ErrNotParticipant
	}

	err = retry.Do(ctx, s.retryP, func(ctx context.Context) error {
		return s.typingRepo.Stop(ctx, conversationId, userId)
	})
	if err != nil {
		log.CtxError(ctx, "typing stop failed: %v", err)
		return errcode.ErrInternalServer
	}

	s.disarmExpiry(conversationId, userId)
	s.pushToOthers(ctx, conversationId, userId, entity.TypingDelete(&entity.TypingStatus{
		ConversationId: conversationId,
		UserId:         userId,
	}))

	return nil
}

// TypingList is the channel read view: who is typing plus the caption to
// display
type TypingList struct {
	ConversationId string                 `json:"conversation_id"`
	Typists        []*entity.TypingStatus `json:"typists"`
	Caption        string                 `json:"caption"`
}

// List returns the active typists for a conversation. Expired records are
// pruned before answering, so a crashed client disappears within the TTL.
func (s *TypingService) List(ctx context.Context, userId, conversationId string) (*TypingList, error) {
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

	statuses, err := s.typingRepo.List(ctx, conversationId)
	if err != nil {
		log.CtxError(ctx, "typing list failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	// The caller never sees their own typing record
	typists := make([]*entity.TypingStatus, 0, len(statuses))
	typistIds := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if st.UserId == userId {
			continue
		}
		typists = append(typists, st)
		typistIds = append(typistIds, st.UserId)
	}

	names, err := s.userRepo.GetNicknames(ctx, typistIds)
	if err != nil {
		log.CtxWarn(ctx, "resolve typist names failed: %v", err)
		names = typistIds
	}

	return &TypingList{
		ConversationId: conversationId,
		Typists:        typists,
		Caption:        entity.TypingCaption(names),
	}, nil
}

// armExpiry (re)starts the local lapse timer for one typist. When it fires
// and Redis confirms the record is gone, the delete event goes out even
// though no stop was ever received.
func (s *TypingService) armExpiry(conversationId, userId string) {
	key := timerKey(conversationId, userId)

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	// A small grace past the TTL so a refresh in flight wins the race.
	s.timers[key] = time.AfterFunc(s.TTL()+100*time.Millisecond, func() {
		s.onExpiry(conversationId, userId)
	})
}

func (s *TypingService) disarmExpiry(conversationId, userId string) {
	key := timerKey(conversationId, userId)

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

func (s *TypingService) onExpiry(conversationId, userId string) {
	ctx := context.Background()

	stillTyping, err := s.typingRepo.IsTyping(ctx, conversationId, userId)
	if err != nil {
		log.CtxWarn(ctx, "typing expiry check failed: %v", err)
		return
	}
	if stillTyping {
		// Refreshed from another instance; our timer was stale.
		return
	}

	s.disarmExpiry(conversationId, userId)
	s.pushToOthers(ctx, conversationId, userId, entity.TypingDelete(&entity.TypingStatus{
		ConversationId: conversationId,
		UserId:         userId,
	}))
}

func (s *TypingService) pushToOthers(ctx context.Context, conversationId, userId string, event *entity.ChangeEvent) {
	if s.pusher == nil {
		return
	}
	participantIds, err := s.convRepo.GetParticipantIds(ctx, conversationId)
	if err != nil || len(participantIds) == 0 {
		return
	}
	targets := make([]string, 0, len(participantIds))
	for _, id := range participantIds {
		if id == userId {
			continue
		}
		targets = append(targets, id)
	}
	if len(targets) > 0 {
		s.pusher.AsyncPushToUsers(event, targets, "")
	}
}

// Shutdown stops every pending expiry timer
func (s *TypingService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
