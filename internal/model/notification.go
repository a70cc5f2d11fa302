package model

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a feed entry targeted at a role, a user, or everyone.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Role      string           `json:"role,omitempty"`
	UserID    string           `json:"user_id,omitempty"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewNotification is the producer-side shape of a feed entry.
type NewNotification struct {
	Title   string           `json:"title" binding:"required"`
	Message string           `json:"message" binding:"required"`
	Type    NotificationType `json:"type" binding:"required,oneof=info success warning error"`
	Role    string           `json:"role"`
	UserID  string           `json:"user_id"`
	Link    string           `json:"link"`
}

// Recipient identifies who is reading the feed.
type Recipient struct {
	UserID string
	Role   Role
}

// VisibleTo reports whether the entry is addressed to r. A user-targeted
// entry is visible only to that user.
func (n *Notification) VisibleTo(r Recipient) bool {
	if n.UserID != "" {
		return n.UserID == r.UserID
	}
	return n.Role == "" || n.Role == RoleAll || n.Role == string(r.Role)
}
