package constant

import "time"

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

// Message status names, derived from timestamp presence.
// Priority order when several timestamps are set: read > delivered > sent.
const (
	MsgStatusSending   = "sending"
	MsgStatusSent      = "sent"
	MsgStatusDelivered = "delivered"
	MsgStatusRead      = "read"
)

// Notification types. The set is closed: anything else is rejected at the
// API boundary as a validation error.
const (
	NotificationTypeTask         = "task"
	NotificationTypeLeave        = "leave"
	NotificationTypePurchase     = "purchase"
	NotificationTypeAnnouncement = "announcement"
	NotificationTypeMessage      = "message"
)

// NotificationTypes lists all accepted notification types.
var NotificationTypes = []string{
	NotificationTypeTask,
	NotificationTypeLeave,
	NotificationTypePurchase,
	NotificationTypeAnnouncement,
	NotificationTypeMessage,
}

// IsValidNotificationType reports whether t is one of the closed set.
func IsValidNotificationType(t string) bool {
	for _, v := range NotificationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Participant roles
const (
	ParticipantRoleMember = 0
	ParticipantRoleAdmin  = 1
)

// User roles carried in the bearer token
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

// PlatformIdToName converts platform Id to name
func PlatformIdToName(platformId int) string {
	switch platformId {
	case PlatformIdIOS:
		return "iOS"
	case PlatformIdAndroid:
		return "Android"
	case PlatformIdWindows:
		return "Windows"
	case PlatformIdMacOS:
		return "macOS"
	case PlatformIdWeb:
		return "Web"
	default:
		return "Unknown"
	}
}

// Conversation Id prefixes
const (
	DirectConversationPrefix = "dm_"
	GroupConversationPrefix  = "gr_"
)

// Ephemeral lifecycle defaults. Config may override both.
const (
	DefaultTypingTTL         = 2 * time.Second
	DefaultIndicatorDuration = 3 * time.Second
)

// Redis key patterns (without prefix, use the RedisKey getters for full keys)
const (
	redisKeyToken  = "token:%s:%d"  // token:{user_id}:{platform_id}
	redisKeyOnline = "online:%s"    // online:{user_id}
	redisKeyUnread = "unread:%s:%s" // unread:{user_id}:{conversation_id}
	redisKeyTyping = "typing:%s"    // typing:{conversation_id}
)

// redisKeyPrefix is the global prefix for all Redis keys
var redisKeyPrefix = "pulse:"

// InitRedisKeyPrefix initializes the Redis key prefix from config
func InitRedisKeyPrefix(prefix string) {
	if prefix != "" {
		redisKeyPrefix = prefix
	}
}

// GetRedisKeyPrefix returns the current Redis key prefix
func GetRedisKeyPrefix() string {
	return redisKeyPrefix
}

// Redis key getters with prefix
func RedisKeyToken() string  { return redisKeyPrefix + redisKeyToken }
func RedisKeyOnline() string { return redisKeyPrefix + redisKeyOnline }
func RedisKeyUnread() string { return redisKeyPrefix + redisKeyUnread }
func RedisKeyTyping() string { return redisKeyPrefix + redisKeyTyping }
