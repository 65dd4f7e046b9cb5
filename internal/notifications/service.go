package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Service implements notification fan-out and inbox operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Send creates one notification and one receipt per distinct recipient.
// Without explicit recipients every active supplier is targeted.
func (s *Service) Send(ctx context.Context, createdBy *uuid.UUID, req SendRequest) (*SendResult, error) {
	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return nil, httpx.Invalid("title and message are required")
	}
	kind := req.Kind
	if kind == "" {
		kind = KindInfo
	}

	recipients := dedupe(req.RecipientIDs)
	if len(req.RecipientIDs) == 0 {
		ids, err := s.repo.ActiveSupplierIDs(ctx)
		if err != nil {
			return nil, err
		}
		recipients = ids
	}
	if len(recipients) == 0 {
		return nil, httpx.Invalid("no recipients to notify")
	}

	n, err := s.repo.CreateWithReceipts(ctx, Notification{
		Title:     title,
		Message:   message,
		Kind:      kind,
		Link:      strings.TrimSpace(req.Link),
		CreatedBy: createdBy,
	}, recipients)
	if err != nil {
		return nil, fmt.Errorf("send notification: %w", err)
	}
	return &SendResult{Notification: n, Receipts: len(recipients)}, nil
}

// Notify sends a system generated notification to a single profile.
func (s *Service) Notify(ctx context.Context, to uuid.UUID, title, message, kind, link string) error {
	if to == uuid.Nil {
		return httpx.Invalid("recipient required")
	}
	_, err := s.Send(ctx, nil, SendRequest{
		Title:        title,
		Message:      message,
		Kind:         Kind(kind),
		Link:         link,
		RecipientIDs: []uuid.UUID{to},
	})
	return err
}

// Inbox lists the caller's notifications.
func (s *Service) Inbox(ctx context.Context, principal shared.Principal, filter InboxFilter) (shared.Page[InboxItem], error) {
	items, total, err := s.repo.ListInbox(ctx, principal.ProfileID, filter)
	if err != nil {
		return shared.Page[InboxItem]{}, err
	}
	return shared.NewPage(items, filter.Page, filter.PerPage, total), nil
}

// UnreadCount counts the caller's unread notifications.
func (s *Service) UnreadCount(ctx context.Context, principal shared.Principal) (int, error) {
	return s.repo.UnreadCount(ctx, principal.ProfileID)
}

// MarkRead marks one of the caller's receipts as read.
func (s *Service) MarkRead(ctx context.Context, principal shared.Principal, receiptID uuid.UUID) error {
	receipt, err := s.repo.GetReceipt(ctx, receiptID)
	if err != nil {
		return err
	}
	if !principal.Owns(receipt.ProfileID) {
		return fmt.Errorf("notification belongs to another profile: %w", httpx.ErrForbidden)
	}
	if receipt.ReadAt != nil {
		return nil
	}
	return s.repo.MarkRead(ctx, receiptID)
}

// MarkAllRead marks every unread receipt of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context, principal shared.Principal) (int64, error) {
	return s.repo.MarkAllRead(ctx, principal.ProfileID)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
