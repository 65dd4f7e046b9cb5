package catalog_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RohithAchar/oxm-sub002/internal/catalog"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
	"github.com/RohithAchar/oxm-sub002/internal/suppliers"
	"github.com/RohithAchar/oxm-sub002/internal/testing/testkit"
)

type memoryRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
	verified map[uuid.UUID]bool
	failNext error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: map[uuid.UUID]*catalog.Product{}, verified: map[uuid.UUID]bool{}}
}

// WithTx stages writes on a copy and only publishes them when fn succeeds.
func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, catalog.TxRepository) error) error {
	m.mu.Lock()
	staged := make(map[uuid.UUID]*catalog.Product, len(m.products))
	for id, p := range m.products {
		cp := *p
		staged[id] = &cp
	}
	m.mu.Unlock()

	tx := &memoryTx{products: staged, failNext: m.failNext}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.mu.Lock()
	m.products = staged
	m.mu.Unlock()
	return nil
}

func (m *memoryRepo) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *p
	cp.SupplierVerified = m.verified[p.SupplierID]
	return &cp, nil
}

func (m *memoryRepo) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalog.Product
	for _, p := range m.products {
		if filter.PublicOnly && (!p.IsActive || !m.verified[p.SupplierID]) {
			continue
		}
		if filter.SupplierID != nil && p.SupplierID != *filter.SupplierID {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.IsActive = active
	return nil
}

func (m *memoryRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

type memoryTx struct {
	products map[uuid.UUID]*catalog.Product
	failNext error
}

func (t *memoryTx) CreateProduct(ctx context.Context, p catalog.Product) (uuid.UUID, error) {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	t.products[p.ID] = &p
	return p.ID, nil
}

func (t *memoryTx) UpdateProduct(ctx context.Context, p catalog.Product) error {
	current, ok := t.products[p.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	p.IsActive = current.IsActive
	p.CreatedAt = current.CreatedAt
	t.products[p.ID] = &p
	return nil
}

func (t *memoryTx) DeleteChildren(ctx context.Context, productID uuid.UUID) error {
	p := t.products[productID]
	p.Images, p.Specifications, p.PriceTiers = nil, nil, nil
	return nil
}

func (t *memoryTx) InsertChildren(ctx context.Context, productID uuid.UUID, images []catalog.Image, specs []catalog.Specification, tiers []catalog.PriceTier) error {
	if t.failNext != nil {
		return t.failNext
	}
	p := t.products[productID]
	p.Images, p.Specifications, p.PriceTiers = images, specs, tiers
	return nil
}

type fakeBusinesses map[uuid.UUID]uuid.UUID

func (f fakeBusinesses) ForProfile(ctx context.Context, profileID uuid.UUID) (*suppliers.Business, error) {
	id, ok := f[profileID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &suppliers.Business{ID: id, ProfileID: profileID, Status: suppliers.StatusVerified}, nil
}

type fixture struct {
	repo     *memoryRepo
	auditor  *testkit.Auditor
	service  *catalog.Service
	owner    shared.Principal
	other    shared.Principal
	business uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemoryRepo(),
		auditor:  &testkit.Auditor{},
		owner:    testkit.NewPrincipal(shared.RoleSupplier),
		other:    testkit.NewPrincipal(shared.RoleSupplier),
		business: uuid.New(),
	}
	businesses := fakeBusinesses{f.owner.ProfileID: f.business, f.other.ProfileID: uuid.New()}
	f.repo.verified[f.business] = true
	f.service = catalog.NewService(f.repo, businesses, f.auditor)
	return f
}

func intPtr(v int) *int { return &v }

func sampleInput() catalog.ProductInput {
	return catalog.ProductInput{
		Name:           "Steel Bolts",
		MOQ:            100,
		BasePrice:      4.5,
		Images:         []string{"https://cdn.example.com/bolt.png"},
		Specifications: []catalog.Specification{{Name: "Grade", Value: "8.8"}},
		PriceTiers: []catalog.PriceTier{
			{MinQty: 1000, UnitPrice: 3.5},
			{MinQty: 100, MaxQty: intPtr(999), UnitPrice: 4},
		},
	}
}

func TestCreateRequiresBusiness(t *testing.T) {
	f := newFixture()
	_, err := f.service.Create(context.Background(), testkit.NewPrincipal(shared.RoleSupplier), sampleInput())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Contains(t, err.Error(), "create your business first")
}

func TestCreateAndPrice(t *testing.T) {
	f := newFixture()
	p, err := f.service.Create(context.Background(), f.owner, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, f.business, p.SupplierID)
	assert.True(t, p.IsActive)
	require.Len(t, p.PriceTiers, 2)
	assert.Equal(t, 100, p.PriceTiers[0].MinQty)
	assert.Equal(t, 4.0, p.UnitPriceFor(500))
	assert.Equal(t, 3.5, p.UnitPriceFor(2000))
}

func TestOwnershipOnMutations(t *testing.T) {
	f := newFixture()
	p, err := f.service.Create(context.Background(), f.owner, sampleInput())
	require.NoError(t, err)

	_, err = f.service.Update(context.Background(), f.other, p.ID, sampleInput())
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	err = f.service.Delete(context.Background(), f.other, p.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	err = f.service.Delete(context.Background(), testkit.NewPrincipal(shared.RoleSupplier), p.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	err = f.service.Delete(context.Background(), f.owner, uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	require.NoError(t, f.service.Delete(context.Background(), f.owner, p.ID))
	_, err = f.service.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateReplacesChildrenAtomically(t *testing.T) {
	f := newFixture()
	p, err := f.service.Create(context.Background(), f.owner, sampleInput())
	require.NoError(t, err)

	in := sampleInput()
	in.Name = "Steel Bolts M8"
	in.PriceTiers = []catalog.PriceTier{{MinQty: 100, UnitPrice: 3}}
	updated, err := f.service.Update(context.Background(), f.owner, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Steel Bolts M8", updated.Name)
	require.Len(t, updated.PriceTiers, 1)

	f.repo.failNext = assert.AnError
	in.Name = "Should not stick"
	_, err = f.service.Update(context.Background(), f.owner, p.ID, in)
	require.Error(t, err)
	current, err := f.service.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Steel Bolts M8", current.Name)
}

func TestPublicVisibilityAndAdminStatus(t *testing.T) {
	f := newFixture()
	p, err := f.service.Create(context.Background(), f.owner, sampleInput())
	require.NoError(t, err)
	hidden, err := f.service.Create(context.Background(), f.other, sampleInput())
	require.NoError(t, err)

	_, err = f.service.PublicGet(context.Background(), hidden.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	page, err := f.service.PublicList(context.Background(), catalog.ListFilter{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, p.ID, page.Items[0].ID)

	admin := testkit.NewPrincipal(shared.RoleAdmin)
	_, err = f.service.SetStatus(context.Background(), admin, p.ID, false)
	require.NoError(t, err)
	_, err = f.service.PublicGet(context.Background(), p.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	require.Len(t, f.auditor.Entries, 1)
	assert.Equal(t, "product.status", f.auditor.Entries[0].Action)

	mine, err := f.service.Mine(context.Background(), f.owner, catalog.ListFilter{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)
}

func TestHandlerRoutes(t *testing.T) {
	f := newFixture()
	h := catalog.NewHandler(testkit.Logger(), f.service)
	r := chi.NewRouter()
	r.Use(testkit.AsPrincipal(map[string]shared.Principal{"owner": f.owner, "other": f.other}))
	r.Route("/api/products", h.MountPublicRoutes)
	r.Route("/api/supplier/products", h.MountSupplierRoutes)

	bad := sampleInput()
	bad.PriceTiers = []catalog.PriceTier{{MinQty: 10, UnitPrice: 1}}
	rec := testkit.Do(t, r, http.MethodPost, "/api/supplier/products", "owner", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testkit.Do(t, r, http.MethodPost, "/api/supplier/products", "owner", sampleInput())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created catalog.Product
	testkit.Decode(t, rec, &created)

	rec = testkit.Do(t, r, http.MethodPut, "/api/supplier/products/"+created.ID.String(), "other", sampleInput())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testkit.Do(t, r, http.MethodDelete, "/api/supplier/products/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testkit.Do(t, r, http.MethodGet, "/api/products?supplier_id=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testkit.Do(t, r, http.MethodGet, "/api/products/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = testkit.Do(t, r, http.MethodDelete, "/api/supplier/products/"+created.ID.String(), "owner", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
