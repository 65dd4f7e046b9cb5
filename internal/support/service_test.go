package support_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
	"github.com/RohithAchar/oxm-sub002/internal/support"
	"github.com/RohithAchar/oxm-sub002/internal/testing/testkit"
)

type memoryRepo struct {
	mu          sync.Mutex
	tickets     map[uuid.UUID]*support.Ticket
	messages    []support.Message
	failMessage error
	// closeBeforeTouch closes the ticket between the status read and the write.
	closeBeforeTouch bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tickets: map[uuid.UUID]*support.Ticket{}}
}

type memoryTx struct {
	repo     *memoryRepo
	tickets  []*support.Ticket
	messages []support.Message
	touched  map[uuid.UUID]support.Status
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, support.TxRepository) error) error {
	tx := &memoryTx{repo: m, touched: map[uuid.UUID]support.Status{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tx.tickets {
		m.tickets[t.ID] = t
	}
	m.messages = append(m.messages, tx.messages...)
	for id, status := range tx.touched {
		m.tickets[id].Status = status
	}
	return nil
}

func (t *memoryTx) CreateTicket(ctx context.Context, tk support.Ticket) (*support.Ticket, error) {
	tk.ID = uuid.New()
	tk.Status = support.StatusOpen
	tk.CreatedAt = time.Now()
	t.tickets = append(t.tickets, &tk)
	cp := tk
	return &cp, nil
}

func (t *memoryTx) AddMessage(ctx context.Context, m support.Message) (*support.Message, error) {
	if t.repo.failMessage != nil {
		return nil, t.repo.failMessage
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	t.messages = append(t.messages, m)
	return &m, nil
}

func (t *memoryTx) TouchTicket(ctx context.Context, id uuid.UUID, status support.Status) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	ticket, ok := t.repo.tickets[id]
	if !ok {
		return nil
	}
	if t.repo.closeBeforeTouch {
		ticket.Status = support.StatusClosed
	}
	if ticket.Status == support.StatusClosed {
		return httpx.Invalid("ticket is closed")
	}
	t.touched[id] = status
	return nil
}

func (m *memoryRepo) GetTicket(ctx context.Context, id uuid.UUID) (*support.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryRepo) ListTickets(ctx context.Context, filter support.ListFilter) ([]support.Ticket, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []support.Ticket
	for _, t := range m.tickets {
		if filter.ProfileID != nil && t.ProfileID != *filter.ProfileID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *memoryRepo) ListMessages(ctx context.Context, ticketID uuid.UUID) ([]support.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []support.Message
	for _, msg := range m.messages {
		if msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryRepo) SetStatus(ctx context.Context, id uuid.UUID, status support.Status) (*support.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	t.Status = status
	cp := *t
	return &cp, nil
}

type fixture struct {
	repo     *memoryRepo
	notifier *testkit.Notifier
	service  *support.Service
	owner    shared.Principal
	admin    shared.Principal
	stranger shared.Principal
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemoryRepo(),
		notifier: &testkit.Notifier{},
		owner:    testkit.NewPrincipal(shared.RoleBuyer),
		admin:    testkit.NewPrincipal(shared.RoleAdmin),
		stranger: testkit.NewPrincipal(shared.RoleSupplier),
	}
	f.service = support.NewService(f.repo, f.notifier, testkit.Logger())
	return f
}

func (f *fixture) open(t *testing.T) *support.Ticket {
	t.Helper()
	ticket, err := f.service.Create(context.Background(), f.owner, support.CreateTicketRequest{Subject: "Payment stuck", Message: "My payout has not arrived"})
	require.NoError(t, err)
	return ticket
}

func TestCreateStoresFirstMessage(t *testing.T) {
	f := newFixture()
	ticket := f.open(t)
	assert.Equal(t, "general", ticket.Category)
	assert.Equal(t, support.PriorityNormal, ticket.Priority)
	require.Len(t, ticket.Messages, 1)
	assert.False(t, ticket.Messages[0].IsStaff)

	got, err := f.service.Get(context.Background(), f.owner, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestCreateRollsBackWithoutMessage(t *testing.T) {
	f := newFixture()
	f.repo.failMessage = errors.New("insert failed")
	_, err := f.service.Create(context.Background(), f.owner, support.CreateTicketRequest{Subject: "x", Message: "y"})
	require.Error(t, err)
	assert.Empty(t, f.repo.tickets)
}

func TestAccessRules(t *testing.T) {
	f := newFixture()
	ticket := f.open(t)

	_, err := f.service.Get(context.Background(), f.stranger, ticket.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = f.service.AddMessage(context.Background(), f.stranger, ticket.ID, support.MessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = f.service.Get(context.Background(), f.admin, ticket.ID)
	assert.NoError(t, err)
	_, err = f.service.Get(context.Background(), f.owner, uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	mine, err := f.service.List(context.Background(), f.stranger, support.ListFilter{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Zero(t, mine.Total)
	all, err := f.service.List(context.Background(), f.admin, support.ListFilter{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, all.Total)
}

func TestStaffReplyMovesToInProgress(t *testing.T) {
	f := newFixture()
	ticket := f.open(t)

	msg, err := f.service.AddMessage(context.Background(), f.admin, ticket.ID, support.MessageRequest{Message: "Looking into it"})
	require.NoError(t, err)
	assert.True(t, msg.IsStaff)

	got, err := f.service.Get(context.Background(), f.owner, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, support.StatusInProgress, got.Status)
	assert.Len(t, got.Messages, 2)
	assert.Len(t, f.notifier.To(f.owner.ProfileID), 1)

	_, err = f.service.AddMessage(context.Background(), f.owner, ticket.ID, support.MessageRequest{Message: "Thanks"})
	require.NoError(t, err)
	assert.Len(t, f.notifier.To(f.owner.ProfileID), 1)
}

func TestClosedTicketRejectsMessages(t *testing.T) {
	f := newFixture()
	ticket := f.open(t)

	_, err := f.service.SetStatus(context.Background(), ticket.ID, support.StatusResolved)
	require.NoError(t, err)
	_, err = f.service.AddMessage(context.Background(), f.owner, ticket.ID, support.MessageRequest{Message: "Still broken"})
	require.NoError(t, err)
	got, err := f.service.Get(context.Background(), f.owner, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, support.StatusOpen, got.Status)

	_, err = f.service.SetStatus(context.Background(), ticket.ID, support.StatusClosed)
	require.NoError(t, err)
	_, err = f.service.AddMessage(context.Background(), f.owner, ticket.ID, support.MessageRequest{Message: "hello?"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = f.service.SetStatus(context.Background(), ticket.ID, "archived")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReplyCannotReopenConcurrentlyClosedTicket(t *testing.T) {
	f := newFixture()
	ticket := f.open(t)
	_, err := f.service.SetStatus(context.Background(), ticket.ID, support.StatusResolved)
	require.NoError(t, err)

	f.repo.closeBeforeTouch = true
	_, err = f.service.AddMessage(context.Background(), f.owner, ticket.ID, support.MessageRequest{Message: "Still broken"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	f.repo.closeBeforeTouch = false
	got, err := f.service.Get(context.Background(), f.owner, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, support.StatusClosed, got.Status)
	assert.Len(t, got.Messages, 1)
}

func TestNotifyFailureDoesNotFailWrites(t *testing.T) {
	f := newFixture()
	ticket := f.open(t)
	f.notifier.Err = errors.New("receipt insert failed")

	msg, err := f.service.AddMessage(context.Background(), f.admin, ticket.ID, support.MessageRequest{Message: "Looking into it"})
	require.NoError(t, err)
	assert.True(t, msg.IsStaff)

	resolved, err := f.service.SetStatus(context.Background(), ticket.ID, support.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, support.StatusResolved, resolved.Status)
	assert.Empty(t, f.notifier.Sent)
}

func TestHandlerRoutes(t *testing.T) {
	f := newFixture()
	h := support.NewHandler(testkit.Logger(), f.service)
	r := chi.NewRouter()
	r.Use(testkit.AsPrincipal(map[string]shared.Principal{"owner": f.owner, "admin": f.admin, "stranger": f.stranger}))
	r.Route("/api/support/tickets", h.MountRoutes)
	r.Route("/api/admin/support/tickets", h.MountAdminRoutes)

	rec := testkit.Do(t, r, http.MethodPost, "/api/support/tickets", "owner", map[string]string{"subject": "Help"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testkit.Do(t, r, http.MethodPost, "/api/support/tickets", "owner", map[string]string{"subject": "Help", "message": "Please", "priority": "high"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ticket support.Ticket
	testkit.Decode(t, rec, &ticket)
	assert.Equal(t, support.PriorityHigh, ticket.Priority)

	rec = testkit.Do(t, r, http.MethodGet, "/api/support/tickets/"+ticket.ID.String(), "stranger", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testkit.Do(t, r, http.MethodPost, "/api/support/tickets/"+ticket.ID.String()+"/messages", "admin", map[string]string{"message": "On it"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = testkit.Do(t, r, http.MethodPost, "/api/admin/support/tickets/"+ticket.ID.String()+"/status", "admin", map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = testkit.Do(t, r, http.MethodPost, "/api/support/tickets/"+ticket.ID.String()+"/messages", "owner", map[string]string{"message": "one more"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
