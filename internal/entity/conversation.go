package entity

// Conversation represents a message thread, direct or group. The Id is the
// opaque string clients pass as chat id.
type Conversation struct {
	Id        string `json:"id" gorm:"column:id;primaryKey"`
	Type      int32  `json:"type" gorm:"column:type"`
	Title     string `json:"title" gorm:"column:title"`
	CreatedBy string `json:"created_by" gorm:"column:created_by"`
	CreatedAt int64  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt int64  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// Participant links a user to a conversation. Membership is the access
// authority for every message/typing/unread operation.
type Participant struct {
	Id             int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ConversationId string `json:"conversation_id" gorm:"column:conversation_id"`
	UserId         string `json:"user_id" gorm:"column:user_id"`
	Role           int32  `json:"role" gorm:"column:role"`
	JoinedAt       int64  `json:"joined_at" gorm:"column:joined_at"`
	CreatedAt      int64  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      int64  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for Participant
func (Participant) TableName() string {
	return "participants"
}

// ParticipantInfo represents a participant with profile fields resolved
type ParticipantInfo struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Role     int32  `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

// UnreadCounter is the per-user, per-conversation unread state. The Redis
// key is authoritative for Count; this row mirrors it for totals and cold
// reads. LastReadAt changes only when the user marks the conversation read.
type UnreadCounter struct {
	Id             int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserId         string `json:"user_id" gorm:"column:user_id"`
	ConversationId string `json:"conversation_id" gorm:"column:conversation_id"`
	Count          int64  `json:"count" gorm:"column:count"`
	LastReadAt     int64  `json:"last_read_at" gorm:"column:last_read_at"`
	UpdatedAt      int64  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for UnreadCounter
func (UnreadCounter) TableName() string {
	return "unread_counters"
}

// UnreadInfo is the API view of a conversation's unread state
type UnreadInfo struct {
	ConversationId string `json:"conversation_id"`
	UnreadCount    int64  `json:"unread_count"`
	LastReadAt     int64  `json:"last_read_at,omitempty"`
}
