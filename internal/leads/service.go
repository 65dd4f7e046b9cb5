package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/catalog"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
	"github.com/RohithAchar/oxm-sub002/internal/suppliers"
)

const idempotencyModule = "rfq_leads"

// Products resolves catalog products.
type Products interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Businesses resolves supplier businesses.
type Businesses interface {
	Get(ctx context.Context, id uuid.UUID) (*suppliers.Business, error)
	ForProfile(ctx context.Context, profileID uuid.UUID) (*suppliers.Business, error)
}

// Notifier delivers a notification to one profile.
type Notifier interface {
	Notify(ctx context.Context, to uuid.UUID, title, message, kind, link string) error
}

// Service implements the lead workflow.
type Service struct {
	repo        Repository
	products    Products
	businesses  Businesses
	idempotency shared.Idempotency
	notifier    Notifier
	logger      *slog.Logger
}

// NewService constructs a Service. A nil logger falls back to slog.Default.
func NewService(repo Repository, products Products, businesses Businesses, idempotency shared.Idempotency, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, products: products, businesses: businesses, idempotency: idempotency, notifier: notifier, logger: logger}
}

// Create raises a lead and notifies the supplier. A non-empty idempotency
// key makes replays of the same request fail with a conflict. The key is
// released only when no lead was stored.
func (s *Service) Create(ctx context.Context, principal shared.Principal, req CreateRequest, idempotencyKey string) (lead *Lead, err error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		scoped := principal.ProfileID.String() + ":" + idempotencyKey
		if err := s.idempotency.CheckAndInsert(ctx, scoped, idempotencyModule); err != nil {
			return nil, err
		}
		defer func() {
			if err != nil && lead == nil {
				if derr := s.idempotency.Delete(ctx, scoped, idempotencyModule); derr != nil {
					s.logger.Warn("release idempotency key", slog.String("key", scoped), slog.Any("error", derr))
				}
			}
		}()
	}

	l, business, err := s.draft(ctx, req)
	if err != nil {
		return nil, err
	}
	if business.ProfileID == principal.ProfileID {
		return nil, httpx.Invalid("cannot raise a lead against your own business")
	}
	l.BuyerID = principal.ProfileID

	lead, err = s.repo.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("%d %s of %s requested", lead.Quantity, lead.Unit, lead.ProductName)
	s.notify(ctx, business.ProfileID, "New buy lead", message, "/supplier/leads/"+lead.ID.String())
	return lead, nil
}

// draft resolves the target supplier and pricing for a new lead.
func (s *Service) draft(ctx context.Context, req CreateRequest) (Lead, *suppliers.Business, error) {
	l := Lead{
		ProductName:  strings.TrimSpace(req.ProductName),
		Quantity:     req.Quantity,
		Unit:         strings.TrimSpace(req.Unit),
		TargetPrice:  req.TargetPrice,
		DeliveryCity: strings.TrimSpace(req.DeliveryCity),
		Requirements: strings.TrimSpace(req.Requirements),
		Status:       StatusOpen,
	}
	if l.Quantity <= 0 {
		return Lead{}, nil, httpx.Invalid("quantity must be positive")
	}

	var supplierID uuid.UUID
	switch {
	case req.ProductID != nil:
		product, err := s.products.Get(ctx, *req.ProductID)
		if err != nil {
			return Lead{}, nil, err
		}
		if !product.IsActive {
			return Lead{}, nil, fmt.Errorf("product: %w", httpx.ErrNotFound)
		}
		if req.SupplierID != nil && *req.SupplierID != product.SupplierID {
			return Lead{}, nil, httpx.Invalid("product does not belong to supplier")
		}
		supplierID = product.SupplierID
		l.ProductID = &product.ID
		l.ProductName = product.Name
		if l.Unit == "" {
			l.Unit = product.Unit
		}
		estimate := math.Round(product.UnitPriceFor(l.Quantity)*100) / 100
		l.EstimatedUnitPrice = &estimate
		total := product.EstimateTotal(l.Quantity)
		l.EstimatedTotal = &total
	case req.SupplierID != nil:
		if l.ProductName == "" {
			return Lead{}, nil, httpx.Invalid("product_name is required without product_id")
		}
		supplierID = *req.SupplierID
	default:
		return Lead{}, nil, httpx.Invalid("product_id or supplier_id is required")
	}
	if l.Unit == "" {
		l.Unit = "piece"
	}

	business, err := s.businesses.Get(ctx, supplierID)
	if err != nil {
		return Lead{}, nil, err
	}
	if !business.IsVerified() {
		return Lead{}, nil, fmt.Errorf("supplier: %w", httpx.ErrNotFound)
	}
	l.SupplierID = business.ID
	return l, business, nil
}

// List returns the caller's leads from the requested side.
func (s *Service) List(ctx context.Context, principal shared.Principal, party Party, filter ListFilter) (shared.Page[Lead], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return shared.Page[Lead]{}, httpx.Invalid("unknown status %q", filter.Status)
	}
	if party == "" {
		party = PartyBuyer
		if principal.Role == shared.RoleSupplier {
			party = PartySupplier
		}
	}
	filter.BuyerID, filter.SupplierID = nil, nil
	switch party {
	case PartyBuyer:
		filter.BuyerID = &principal.ProfileID
	case PartySupplier:
		business, err := s.businesses.ForProfile(ctx, principal.ProfileID)
		if err != nil {
			return shared.Page[Lead]{}, err
		}
		filter.SupplierID = &business.ID
	default:
		return shared.Page[Lead]{}, httpx.Invalid("role must be buyer or supplier")
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Page[Lead]{}, err
	}
	return shared.NewPage(items, filter.Page, filter.PerPage, total), nil
}

// Get returns a lead to either of its parties.
func (s *Service) Get(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.Owns(l.BuyerID) {
		return l, nil
	}
	if ok, err := s.isSupplierParty(ctx, principal, l); err != nil {
		return nil, err
	} else if ok {
		return l, nil
	}
	return nil, fmt.Errorf("lead belongs to other parties: %w", httpx.ErrForbidden)
}

// Respond records the supplier's quote and notifies the buyer.
func (s *Service) Respond(ctx context.Context, principal shared.Principal, id uuid.UUID, req RespondRequest) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.isSupplierParty(ctx, principal, l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("only the addressed supplier may respond: %w", httpx.ErrForbidden)
	}
	if !CanTransition(l.Status, StatusResponded) {
		return nil, httpx.Invalid("cannot respond to a %s lead", l.Status)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, httpx.Invalid("message is required")
	}
	updated, err := s.repo.Respond(ctx, id, message, req.QuotedPrice)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, updated.BuyerID, "Supplier responded", "Your request for "+updated.ProductName+" has a response", "/rfq/leads/"+updated.ID.String())
	return updated, nil
}

// Close ends a lead on behalf of its buyer.
func (s *Service) Close(ctx context.Context, principal shared.Principal, id uuid.UUID, req CloseRequest) (*Lead, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(l.BuyerID) {
		return nil, fmt.Errorf("only the buyer may close a lead: %w", httpx.ErrForbidden)
	}
	target := StatusClosed
	if req.Cancel {
		target = StatusCancelled
	}
	if !CanTransition(l.Status, target) {
		return nil, httpx.Invalid("cannot move a %s lead to %s", l.Status, target)
	}
	updated, err := s.repo.SetStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}
	business, err := s.businesses.Get(ctx, updated.SupplierID)
	if err != nil {
		s.logger.Warn("resolve lead supplier", slog.String("lead_id", updated.ID.String()), slog.Any("error", err))
		return updated, nil
	}
	s.notify(ctx, business.ProfileID, "Buy lead "+string(target), updated.ProductName+" lead was "+string(target), "/supplier/leads/"+updated.ID.String())
	return updated, nil
}

func (s *Service) isSupplierParty(ctx context.Context, principal shared.Principal, l *Lead) (bool, error) {
	if principal.Role != shared.RoleSupplier {
		return false, nil
	}
	business, err := s.businesses.ForProfile(ctx, principal.ProfileID)
	if errors.Is(err, httpx.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return business.ID == l.SupplierID, nil
}

// notify runs after the lead change is stored, so a failure is logged
// rather than reported to the caller.
func (s *Service) notify(ctx context.Context, to uuid.UUID, title, message, link string) {
	if err := s.notifier.Notify(ctx, to, title, message, "lead", link); err != nil {
		s.logger.Error("notify lead party",
			slog.String("profile_id", to.String()),
			slog.String("title", title),
			slog.Any("error", err))
	}
}
