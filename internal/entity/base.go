package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openhrm/pulse/pkg/constant"
)

// NowUnixMilli returns current unix timestamp in milliseconds
func NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

// GenDirectConversationId generates the conversation Id for a two-party chat.
// Format: dm_{min(userA,userB)}:{max(userA,userB)}
// Uses ":" as separator between userIds to support userIds containing "_"
func GenDirectConversationId(userA, userB string) string {
	users := []string{userA, userB}
	sort.Strings(users)
	return fmt.Sprintf("%s%s:%s", constant.DirectConversationPrefix, users[0], users[1])
}

// GenGroupConversationId generates the conversation Id for a group chat.
// Format: gr_{groupId}
func GenGroupConversationId(groupId string) string {
	return fmt.Sprintf("%s%s", constant.GroupConversationPrefix, groupId)
}

// IsDirectConversation checks if conversation Id is for a two-party chat
func IsDirectConversation(conversationId string) bool {
	return strings.HasPrefix(conversationId, constant.DirectConversationPrefix)
}

// IsGroupConversation checks if conversation Id is for a group chat
func IsGroupConversation(conversationId string) bool {
	return strings.HasPrefix(conversationId, constant.GroupConversationPrefix)
}

// DirectConversationPeers splits a direct conversation Id into its two
// participants. Returns false for group or malformed ids.
func DirectConversationPeers(conversationId string) (string, string, bool) {
	if !IsDirectConversation(conversationId) {
		return "", "", false
	}
	pair := conversationId[len(constant.DirectConversationPrefix):]
	idx := strings.Index(pair, ":")
	if idx <= 0 || idx == len(pair)-1 {
		return "", "", false
	}
	return pair[:idx], pair[idx+1:], true
}
