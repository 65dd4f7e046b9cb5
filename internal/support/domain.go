// Package support implements help desk tickets and their message threads.
package support

import (
	"time"

	"github.com/google/uuid"
)

// Status is the ticket lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority orders the admin queue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Ticket is a support request raised by a profile.
type Ticket struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Subject   string    `json:"subject"`
	Category  string    `json:"category"`
	Priority  Priority  `json:"priority"`
	Status    Status    `json:"status"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one entry in a ticket thread.
type Message struct {
	ID        uuid.UUID `json:"id"`
	TicketID  uuid.UUID `json:"ticket_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTicketRequest opens a ticket with its first message.
type CreateTicketRequest struct {
	Subject  string   `json:"subject" validate:"required,max=200"`
	Category string   `json:"category" validate:"max=50"`
	Priority Priority `json:"priority" validate:"omitempty,oneof=low normal high"`
	Message  string   `json:"message" validate:"required,max=5000"`
}

// MessageRequest appends to a thread.
type MessageRequest struct {
	Message string `json:"message" validate:"required,max=5000"`
}

// StatusRequest is an admin status change.
type StatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

// ListFilter narrows ticket listings. A nil ProfileID lists every ticket.
type ListFilter struct {
	ProfileID *uuid.UUID
	Status    Status
	Page      int
	PerPage   int
}
