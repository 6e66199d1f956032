package sdk

// Conversation types
const (
	ConversationTypeDirect = 1 // Two-party chat
	ConversationTypeGroup  = 2 // Group chat
)

// Message types
const (
	MsgTypeText   = 1
	MsgTypeImage  = 2
	MsgTypeFile   = 3
	MsgTypeSystem = 100
)

// Message status names
const (
	MsgStatusSending   = "sending"
	MsgStatusSent      = "sent"
	MsgStatusDelivered = "delivered"
	MsgStatusRead      = "read"
)

// Notification types accepted by the server
const (
	NotificationTypeTask         = "task"
	NotificationTypeLeave        = "leave"
	NotificationTypePurchase     = "purchase"
	NotificationTypeAnnouncement = "announcement"
	NotificationTypeMessage      = "message"
)

// Participant roles
const (
	ParticipantRoleMember = 0
	ParticipantRoleAdmin  = 1
)

// User roles
const (
	RoleEmployee = "employee"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

// Platform Ids
const (
	PlatformIdUnknown = 0
	PlatformIdIOS     = 1
	PlatformIdAndroid = 2
	PlatformIdWindows = 3
	PlatformIdMacOS   = 4
	PlatformIdWeb     = 5
)
