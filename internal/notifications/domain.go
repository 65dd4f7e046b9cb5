// Package notifications creates marketplace notifications and fans them out
// to per-recipient receipts.
package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for the client UI.
type Kind string

const (
	KindInfo   Kind = "info"
	KindPromo  Kind = "promo"
	KindSystem Kind = "system"
	KindLead   Kind = "lead"
	KindTicket Kind = "ticket"
)

// Notification is the shared body of a notification.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Kind      Kind       `json:"kind"`
	Link      string     `json:"link,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Receipt is the per-recipient delivery record.
type Receipt struct {
	ID             uuid.UUID  `json:"id"`
	NotificationID uuid.UUID  `json:"notification_id"`
	ProfileID      uuid.UUID  `json:"profile_id"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

// InboxItem joins a receipt with its notification body.
type InboxItem struct {
	ReceiptID      uuid.UUID  `json:"id"`
	NotificationID uuid.UUID  `json:"notification_id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Kind           Kind       `json:"kind"`
	Link           string     `json:"link,omitempty"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SendRequest is the admin payload for a new notification. An empty
// RecipientIDs targets every active supplier.
type SendRequest struct {
	Title        string      `json:"title" validate:"required,max=200"`
	Message      string      `json:"message" validate:"required,max=2000"`
	Kind         Kind        `json:"kind" validate:"omitempty,oneof=info promo system lead ticket"`
	Link         string      `json:"link,omitempty" validate:"omitempty,max=500"`
	RecipientIDs []uuid.UUID `json:"recipient_ids,omitempty"`
}

// SendResult reports the created notification and how many receipts exist.
type SendResult struct {
	Notification Notification `json:"notification"`
	Receipts     int          `json:"receipts"`
}

// InboxFilter narrows inbox listings.
type InboxFilter struct {
	UnreadOnly bool
	Page       int
	PerPage    int
}
