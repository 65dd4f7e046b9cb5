package testkit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Sent is one captured notification.
type Sent struct {
	To      uuid.UUID
	Title   string
	Message string
	Kind    string
	Link    string
}

// Notifier captures notifications instead of storing them.
type Notifier struct {
	mu   sync.Mutex
	Sent []Sent
	Err  error
}

// Notify records the call.
func (n *Notifier) Notify(ctx context.Context, to uuid.UUID, title, message, kind, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, Sent{To: to, Title: title, Message: message, Kind: kind, Link: link})
	return nil
}

// To returns the notifications addressed to id.
func (n *Notifier) To(id uuid.UUID) []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Sent
	for _, s := range n.Sent {
		if s.To == id {
			out = append(out, s)
		}
	}
	return out
}

// Auditor captures audit entries.
type Auditor struct {
	mu      sync.Mutex
	Entries []shared.AuditLog
}

// Record stores the entry.
func (a *Auditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, log)
	return nil
}

var _ shared.Auditor = (*Auditor)(nil)
