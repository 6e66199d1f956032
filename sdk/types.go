package sdk

import "encoding/json"

// Response represents the standard API envelope.
// Success: {"status":"success","data":...}
// Error:   {"status":"error","message":"...","fields":[...]}
type Response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Fields  []string        `json:"fields,omitempty"`
}

// Envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// UserInfo represents public user info
type UserInfo struct {
	Id        string  `json:"id"`
	Nickname  string  `json:"nickname"`
	Avatar    string  `json:"avatar"`
	Role      string  `json:"role"`
	Extra     *string `json:"extra,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// MessageInfo represents a message with its read-state timestamps. Status
// is derived server-side from timestamp presence: read > delivered > sent.
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

// ReadReceipt represents one message's delivery/read receipt
type ReadReceipt struct {
	MessageId   int64  `json:"message_id"`
	Status      string `json:"status"`
	SentAt      *int64 `json:"sent_at"`
	DeliveredAt *int64 `json:"delivered_at"`
	ReadAt      *int64 `json:"read_at"`
}

// ConversationInfo represents conversation info
type ConversationInfo struct {
	Id        string `json:"id"`
	Type      int32  `json:"type"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ParticipantInfo represents a conversation participant
type ParticipantInfo struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Role     int32  `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

// UnreadInfo represents one conversation's unread state
type UnreadInfo struct {
	ConversationId string `json:"conversation_id"`
	UnreadCount    int64  `json:"unread_count"`
	LastReadAt     int64  `json:"last_read_at,omitempty"`
}

// UnreadTotal represents the unread summary across conversations
type UnreadTotal struct {
	Total         int64         `json:"total"`
	Conversations []*UnreadInfo `json:"conversations"`
}

// TypingStatus represents one active typist
type TypingStatus struct {
	ConversationId string `json:"conversation_id"`
	UserId         string `json:"user_id"`
	StartedAt      int64  `json:"started_at"`
	ExpiresAt      int64  `json:"expires_at"`
}

// TypingList represents the active typists of a conversation
type TypingList struct {
	ConversationId string          `json:"conversation_id"`
	Typists        []*TypingStatus `json:"typists"`
	Caption        string          `json:"caption"`
}

// NotificationInfo represents one notification
type NotificationInfo struct {
	Id        int64   `json:"id"`
	UserId    string  `json:"user_id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	RefId     string  `json:"ref_id,omitempty"`
	Read      bool    `json:"read"`
	ReadAt    *int64  `json:"read_at"`
	Extra     *string `json:"extra,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// ===== Request types =====

// RegisterRequest represents user registration request
type RegisterRequest struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	UserId     string `json:"user_id"`
	Password   string `json:"password"`
	PlatformId int    `json:"platform_id"`
}

// LoginResponse represents user login response
type LoginResponse struct {
	Token    string    `json:"token"`
	UserInfo *UserInfo `json:"user_info"`
}

// ProvisionRequest represents employee chat account provisioning
type ProvisionRequest struct {
	EmployeeId int64  `json:"employee_id"`
	Nickname   string `json:"nickname"`
}

// UpdateUserRequest represents user update request
type UpdateUserRequest struct {
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Extra    *string `json:"extra,omitempty"`
}

// ChangePasswordRequest represents password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// SendMessageRequest represents send message request. Either RecvId (direct
// chat) or ConversationId (existing group) must be set.
type SendMessageRequest struct {
	ClientMsgId    string `json:"client_msg_id"`
	RecvId         string `json:"recv_id,omitempty"`
	ConversationId string `json:"conversation_id,omitempty"`
	MsgType        int32  `json:"msg_type"`
	Body           string `json:"body"`
}

// EditMessageRequest represents message edit request
type EditMessageRequest struct {
	Body string `json:"body"`
}

// HistoryResponse represents paged message history
type HistoryResponse struct {
	Messages []*MessageInfo `json:"messages"`
	Total    int64          `json:"total"`
}

// MarkConversationReadRequest represents mark conversation read request
type MarkConversationReadRequest struct {
	ConversationId string `json:"conversation_id"`
}

// CreateGroupRequest represents group conversation creation request
type CreateGroupRequest struct {
	Title     string   `json:"title"`
	MemberIds []string `json:"member_ids"`
}

// TypingRequest represents typing start/stop request
type TypingRequest struct {
	ConversationId string `json:"conversation_id"`
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

// NotificationListResponse represents notification list response
type NotificationListResponse struct {
	Notifications []*NotificationInfo `json:"notifications"`
}

// PushTokenRequest represents device push token registration
type PushTokenRequest struct {
	PlatformId int    `json:"platform_id"`
	Token      string `json:"token"`
}
