package suppliers_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/banking"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/suppliers"
)

type memoryRepo struct {
	mu         sync.Mutex
	businesses map[uuid.UUID]*suppliers.Business
	banks      map[uuid.UUID]*suppliers.BankDetails
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{businesses: map[uuid.UUID]*suppliers.Business{}, banks: map[uuid.UUID]*suppliers.BankDetails{}}
}

func (m *memoryRepo) Create(ctx context.Context, b suppliers.Business) (*suppliers.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.businesses {
		if existing.ProfileID == b.ProfileID {
			return nil, httpx.ErrDuplicate
		}
	}
	b.ID = uuid.New()
	b.Status = suppliers.StatusPending
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.businesses[b.ID] = &b
	cp := b
	return &cp, nil
}

func (m *memoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*suppliers.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryRepo) FindByProfile(ctx context.Context, profileID uuid.UUID) (*suppliers.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.businesses {
		if b.ProfileID == profileID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) Update(ctx context.Context, b suppliers.Business) (*suppliers.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.businesses[b.ID]; !ok {
		return nil, httpx.ErrNotFound
	}
	b.UpdatedAt = time.Now()
	m.businesses[b.ID] = &b
	cp := b
	return &cp, nil
}

func (m *memoryRepo) List(ctx context.Context, filter suppliers.ListFilter) ([]suppliers.Business, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []suppliers.Business
	for _, b := range m.businesses {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(b.BusinessName), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *memoryRepo) SetStatus(ctx context.Context, id uuid.UUID, status suppliers.Status, reason string) (*suppliers.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	b.Status = status
	b.RejectionReason = reason
	b.VerifiedAt = nil
	if status == suppliers.StatusVerified {
		now := time.Now()
		b.VerifiedAt = &now
	}
	cp := *b
	return &cp, nil
}

func (m *memoryRepo) UpsertBank(ctx context.Context, d suppliers.BankDetails) (*suppliers.BankDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.banks[d.SupplierID]; ok {
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
	} else {
		d.ID = uuid.New()
		d.CreatedAt = time.Now()
	}
	d.UpdatedAt = time.Now()
	m.banks[d.SupplierID] = &d
	cp := d
	return &cp, nil
}

func (m *memoryRepo) FindBank(ctx context.Context, supplierID uuid.UUID) (*suppliers.BankDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.banks[supplierID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

type fakeIFSC map[string]banking.Branch

func (f fakeIFSC) Lookup(ctx context.Context, code string) (*banking.Branch, error) {
	code = banking.NormalizeIFSC(code)
	if !banking.ValidIFSC(code) {
		return nil, httpx.Invalid("invalid IFSC %q", code)
	}
	b, ok := f[code]
	if !ok {
		return nil, banking.ErrUnknownIFSC
	}
	return &b, nil
}
