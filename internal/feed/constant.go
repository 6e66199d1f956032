package feed

import "time"

// Feed protocol identifiers
const (
	// Request identifiers
	WSSendMsg        = 1001 // Send message
	WSTypingStart    = 1002 // Start/refresh typing
	WSTypingStop     = 1003 // Stop typing
	WSMarkConvRead   = 1004 // Mark conversation read
	WSWatchIndicator = 1005 // Subscribe to a user's send indicator

	// Push identifiers
	WSPushEvent      = 2001 // Row change event
	WSIndicatorState = 2002 // Send indicator snapshot
	WSKickOnline     = 2003 // Kick user offline
)

// Timeout constants
const (
	// WriteWait is time allowed to write a message to the peer
	WriteWait = 10 * time.Second

	// PongWait is time allowed to read the next pong message from the peer
	PongWait = 30 * time.Second

	// PingPeriod is period between pings. Must be less than PongWait
	PingPeriod = (PongWait * 9) / 10

	// MaxMessageSize is maximum message size allowed from peer
	MaxMessageSize = 51200
)

// Query parameter keys
const (
	QueryToken      = "token"
	QuerySendId     = "send_id"
	QueryPlatformId = "platform_id"
)
