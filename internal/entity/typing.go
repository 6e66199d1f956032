package entity

import "fmt"

// TypingStatus is an ephemeral record: user is typing in a conversation
// until ExpiresAt. It lives in Redis, never in MySQL. ExpiresAt is
// authoritative: a record past its expiry is absent even if still stored.
type TypingStatus struct {
	ConversationId string `json:"conversation_id"`
	UserId         string `json:"user_id"`
	StartedAt      int64  `json:"started_at"`
	ExpiresAt      int64  `json:"expires_at"`
}

// Expired reports whether the status is past its expiry at nowMilli
func (t *TypingStatus) Expired(nowMilli int64) bool {
	return nowMilli > t.ExpiresAt
}

// TypingCaption builds the display text for a set of typist names.
// Phrasing is distinct for 0, 1, 2 and more than 2 concurrent typists.
func TypingCaption(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s is typing...", names[0])
	case 2:
		return fmt.Sprintf("%s and %s are typing...", names[0], names[1])
	default:
		return "Several people are typing..."
	}
}
