package entity

import "github.com/openhrm/pulse/pkg/constant"

// Notification is a per-user notification row (task assignment, leave
// decision, purchase decision, announcement, offline chat message).
type Notification struct {
	Id        int64   `json:"id" gorm:"column:id;primaryKey"`
	UserId    string  `json:"user_id" gorm:"column:user_id"`
	Type      string  `json:"type" gorm:"column:type"`
	Title     string  `json:"title" gorm:"column:title"`
	Body      string  `json:"body" gorm:"column:body"`
	RefId     string  `json:"ref_id,omitempty" gorm:"column:ref_id"`
	Read      bool    `json:"read" gorm:"column:read"`
	ReadAt    *int64  `json:"read_at" gorm:"column:read_at"`
	Extra     *string `json:"extra,omitempty" gorm:"column:extra;type:json"`
	CreatedAt int64   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt int64   `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// HasValidType reports whether the type belongs to the closed enumeration
func (n *Notification) HasValidType() bool {
	return constant.IsValidNotificationType(n.Type)
}

// PushToken registers a device push token for a user. One row per
// (user, platform); re-registration replaces the token.
type PushToken struct {
	Id         int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserId     string `json:"user_id" gorm:"column:user_id"`
	PlatformId int    `json:"platform_id" gorm:"column:platform_id"`
	Token      string `json:"token" gorm:"column:token"`
	CreatedAt  int64  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  int64  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for PushToken
func (PushToken) TableName() string {
	return "push_tokens"
}
