package support

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Notifier delivers a notification to one profile.
type Notifier interface {
	Notify(ctx context.Context, to uuid.UUID, title, message, kind, link string) error
}

// Service implements ticket workflows.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Create opens a ticket and stores its first message atomically.
func (s *Service) Create(ctx context.Context, principal shared.Principal, req CreateTicketRequest) (*Ticket, error) {
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Message)
	if subject == "" || body == "" {
		return nil, httpx.Invalid("subject and message are required")
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = "general"
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}

	var ticket *Ticket
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		ticket, err = tx.CreateTicket(ctx, Ticket{ProfileID: principal.ProfileID, Subject: subject, Category: category, Priority: priority})
		if err != nil {
			return err
		}
		first, err := tx.AddMessage(ctx, Message{TicketID: ticket.ID, SenderID: principal.ProfileID, Body: body, IsStaff: principal.IsAdmin()})
		if err != nil {
			return err
		}
		ticket.Messages = []Message{*first}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns the caller's tickets; admins see every ticket.
func (s *Service) List(ctx context.Context, principal shared.Principal, filter ListFilter) (shared.Page[Ticket], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return shared.Page[Ticket]{}, httpx.Invalid("unknown status %q", filter.Status)
	}
	filter.ProfileID = nil
	if !principal.IsAdmin() {
		filter.ProfileID = &principal.ProfileID
	}
	items, total, err := s.repo.ListTickets(ctx, filter)
	if err != nil {
		return shared.Page[Ticket]{}, err
	}
	return shared.NewPage(items, filter.Page, filter.PerPage, total), nil
}

// Get returns a ticket with its thread to its owner or an admin.
func (s *Service) Get(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Ticket, error) {
	ticket, err := s.accessible(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.Messages = messages
	if ticket.Messages == nil {
		ticket.Messages = []Message{}
	}
	return ticket, nil
}

// AddMessage appends to a thread. Staff replies move an open ticket into
// progress and notify the owner; an owner reply reopens a resolved ticket.
func (s *Service) AddMessage(ctx context.Context, principal shared.Principal, id uuid.UUID, req MessageRequest) (*Message, error) {
	ticket, err := s.accessible(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == StatusClosed {
		return nil, httpx.Invalid("ticket is closed")
	}
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, httpx.Invalid("message is required")
	}
	staff := principal.IsAdmin() && !principal.Owns(ticket.ProfileID)

	next := ticket.Status
	switch {
	case staff && ticket.Status == StatusOpen:
		next = StatusInProgress
	case !staff && ticket.Status == StatusResolved:
		next = StatusOpen
	}

	var msg *Message
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		msg, err = tx.AddMessage(ctx, Message{TicketID: id, SenderID: principal.ProfileID, Body: body, IsStaff: staff})
		if err != nil {
			return err
		}
		return tx.TouchTicket(ctx, id, next)
	})
	if err != nil {
		return nil, err
	}
	if staff {
		s.notify(ctx, ticket, "Support replied", "New reply on: "+ticket.Subject)
	}
	return msg, nil
}

// SetStatus lets an admin move a ticket and tells the owner.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Ticket, error) {
	if !status.Valid() {
		return nil, httpx.Invalid("unknown status %q", status)
	}
	ticket, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	label := strings.ReplaceAll(string(status), "_", " ")
	s.notify(ctx, ticket, "Ticket "+label, ticket.Subject+" is now "+label)
	return ticket, nil
}

func (s *Service) notify(ctx context.Context, ticket *Ticket, title, message string) {
	if err := s.notifier.Notify(ctx, ticket.ProfileID, title, message, "ticket", "/support/tickets/"+ticket.ID.String()); err != nil {
		s.logger.Error("notify ticket owner", slog.String("ticket_id", ticket.ID.String()), slog.Any("error", err))
	}
}

func (s *Service) accessible(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Ticket, error) {
	ticket, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(ticket.ProfileID) && !principal.IsAdmin() {
		return nil, fmt.Errorf("ticket belongs to another profile: %w", httpx.ErrForbidden)
	}
	return ticket, nil
}
