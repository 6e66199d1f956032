package entity

// Feed tables whose row mutations are pushed to subscribed clients
const (
	TableMessages      = "messages"
	TableTypingStatus  = "typing_status"
	TableNotifications = "notifications"
)

// Feed actions
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ChangeEvent describes one row-level mutation for the realtime feed.
// Row is the full changed row (its API view), marshalled as-is into the
// frame pushed to clients.
type ChangeEvent struct {
	Table  string      `json:"table"`
	Action string      `json:"action"`
	Row    interface{} `json:"row"`
}

// MessageInsert builds the feed event for a newly persisted message
func MessageInsert(m *Message) *ChangeEvent {
	return &ChangeEvent{Table: TableMessages, Action: ActionInsert, Row: m.ToMessageInfo()}
}

// MessageUpdate builds the feed event for a message state change
// (delivered/read/edited)
func MessageUpdate(m *Message) *ChangeEvent {
	return &ChangeEvent{Table: TableMessages, Action: ActionUpdate, Row: m.ToMessageInfo()}
}

// TypingInsert builds the feed event for a typing start/refresh
func TypingInsert(t *TypingStatus) *ChangeEvent {
	return &ChangeEvent{Table: TableTypingStatus, Action: ActionInsert, Row: t}
}

// TypingDelete builds the feed event for a typing stop or expiry
func TypingDelete(t *TypingStatus) *ChangeEvent {
	return &ChangeEvent{Table: TableTypingStatus, Action: ActionDelete, Row: t}
}

// NotificationInsert builds the feed event for a new notification
func NotificationInsert(n *Notification) *ChangeEvent {
	return &ChangeEvent{Table: TableNotifications, Action: ActionInsert, Row: n}
}

// NotificationUpdate builds the feed event for a notification read flip
func NotificationUpdate(n *Notification) *ChangeEvent {
	return &ChangeEvent{Table: TableNotifications, Action: ActionUpdate, Row: n}
}

// NotificationDelete builds the feed event for a removed notification
func NotificationDelete(n *Notification) *ChangeEvent {
	return &ChangeEvent{Table: TableNotifications, Action: ActionDelete, Row: n}
}
