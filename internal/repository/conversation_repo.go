package repository

import (
	"context"
	"errors"

	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/pkg/constant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepo is the repository for conversation and participant operations
type ConversationRepo struct {
	db *gorm.DB
}

// NewConversationRepo creates a new ConversationRepo
func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetById gets a conversation by Id
func (r *ConversationRepo) GetById(ctx context.Context, conversationId string) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", conversationId).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// EnsureDirectConversation creates the conversation row and both participant
// rows for a two-party chat if they don't exist yet. Safe to call on every
// send: upserts are DoNothing on conflict.
func (r *ConversationRepo) EnsureDirectConversation(ctx context.Context, tx *gorm.DB, userA, userB string) (string, error) {
	conversationId := entity.GenDirectConversationId(userA, userB)
	now := entity.NowUnixMilli()

	conv := &entity.Conversation{
		Id:        conversationId,
		Type:      constant.ConversationTypeDirect,
		CreatedBy: userA,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(conv).Error
	if err != nil {
		return "", err
	}

	participants := []*entity.Participant{
		{ConversationId: conversationId, UserId: userA, Role: constant.ParticipantRoleMember, JoinedAt: now, CreatedAt: now, UpdatedAt: now},
		{ConversationId: conversationId, UserId: userB, Role: constant.ParticipantRoleMember, JoinedAt: now, CreatedAt: now, UpdatedAt: now},
	}
	err = tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(participants).Error
	if err != nil {
		return "", err
	}

	return conversationId, nil
}

// CreateGroup creates a group conversation with its initial member list.
// The creator joins as admin.
func (r *ConversationRepo) CreateGroup(ctx context.Context, tx *gorm.DB, conversationId, title, createdBy string, memberIds []string) error {
	now := entity.NowUnixMilli()

	conv := &entity.Conversation{
		Id:        conversationId,
		Type:      constant.ConversationTypeGroup,
		Title:     title,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(conv).Error; err != nil {
		return err
	}

	participants := make([]*entity.Participant, 0, len(memberIds)+1)
	participants = append(participants, &entity.Participant{
		ConversationId: conversationId,
		UserId:         createdBy,
		Role:           constant.ParticipantRoleAdmin,
		JoinedAt:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	for _, id := range memberIds {
		if id == createdBy {
			continue
		}
		participants = append(participants, &entity.Participant{
			ConversationId: conversationId,
			UserId:         id,
			Role:           constant.ParticipantRoleMember,
			JoinedAt:       now,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(participants).Error
}

// GetParticipants gets all participants of a conversation
func (r *ConversationRepo) GetParticipants(ctx context.Context, conversationId string) ([]*entity.Participant, error) {
	var participants []*entity.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// GetParticipantIds gets the user ids of all participants
func (r *ConversationRepo) GetParticipantIds(ctx context.Context, conversationId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.Participant{}).
		Where("conversation_id = ?", conversationId).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IsParticipant checks whether a user belongs to a conversation. Membership
// is the access authority for every message/typing/unread operation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationId, userId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		Count(&count).Error
	return count > 0, err
}

// GetUserConversationIds gets ids of all conversations a user belongs to
func (r *ConversationRepo) GetUserConversationIds(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.Participant{}).
		Where("user_id = ?", userId).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
