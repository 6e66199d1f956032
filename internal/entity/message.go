package entity

import "github.com/openhrm/pulse/pkg/constant"

// Message represents a chat message. Delivery state is not stored as a
// column of its own: it is derived from which of the three lifecycle
// timestamps are present. sent_at is written when the row is persisted,
// delivered_at and read_at by recipient-side acknowledgements. Once set, a
// timestamp is never cleared.
type Message struct {
	Id             int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ConversationId string `json:"conversation_id" gorm:"column:conversation_id"`
	ClientMsgId    string `json:"client_msg_id" gorm:"column:client_msg_id"`
	SenderId       string `json:"sender_id" gorm:"column:sender_id"`
	MsgType        int32  `json:"msg_type" gorm:"column:msg_type"`
	Body           string `json:"body" gorm:"column:body"`
	SentAt         *int64 `json:"sent_at" gorm:"column:sent_at"`
	DeliveredAt    *int64 `json:"delivered_at" gorm:"column:delivered_at"`
	ReadAt         *int64 `json:"read_at" gorm:"column:read_at"`
	EditedAt       *int64 `json:"edited_at" gorm:"column:edited_at"`
	CreatedAt      int64  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      int64  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// Status derives the display status. Priority: read > delivered > sent.
// A message with none of the three timestamps has no server acknowledgement
// yet and reports "sending" (normally a client-only state).
func (m *Message) Status() string {
	switch {
	case m.ReadAt != nil:
		return constant.MsgStatusRead
	case m.DeliveredAt != nil:
		return constant.MsgStatusDelivered
	case m.SentAt != nil:
		return constant.MsgStatusSent
	default:
		return constant.MsgStatusSending
	}
}

// MessageInfo represents message info for API responses
type MessageInfo struct {
	Id             int64  `json:"id"`
	ConversationId string `json:"conversation_id"`
	ClientMsgId    string `json:"client_msg_id"`
	SenderId       string `json:"sender_id"`
	MsgType        int32  `json:"msg_type"`
	Body           string `json:"body"`
	Status         string `json:"status"`
	SentAt         *int64 `json:"sent_at"`
	DeliveredAt    *int64 `json:"delivered_at"`
	ReadAt         *int64 `json:"read_at"`
	EditedAt       *int64 `json:"edited_at,omitempty"`
}

// ToMessageInfo converts Message to MessageInfo
func (m *Message) ToMessageInfo() *MessageInfo {
	return &MessageInfo{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		ClientMsgId:    m.ClientMsgId,
		SenderId:       m.SenderId,
		MsgType:        m.MsgType,
		Body:           m.Body,
		Status:         m.Status(),
		SentAt:         m.SentAt,
		DeliveredAt:    m.DeliveredAt,
		ReadAt:         m.ReadAt,
		EditedAt:       m.EditedAt,
	}
}

// ReadReceipt reports when a specific message was delivered and read
type ReadReceipt struct {
	MessageId   int64  `json:"message_id"`
	Status      string `json:"status"`
	SentAt      *int64 `json:"sent_at"`
	DeliveredAt *int64 `json:"delivered_at"`
	ReadAt      *int64 `json:"read_at"`
}

// ToReadReceipt converts Message to its receipt view
func (m *Message) ToReadReceipt() *ReadReceipt {
	return &ReadReceipt{
		MessageId:   m.Id,
		Status:      m.Status(),
		SentAt:      m.SentAt,
		DeliveredAt: m.DeliveredAt,
		ReadAt:      m.ReadAt,
	}
}
