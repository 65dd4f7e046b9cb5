package suppliers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/banking"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// IFSCResolver resolves bank branches.
type IFSCResolver interface {
	Lookup(ctx context.Context, code string) (*banking.Branch, error)
}

// Notifier delivers a notification to one profile.
type Notifier interface {
	Notify(ctx context.Context, to uuid.UUID, title, message, kind, link string) error
}

// Service implements supplier business operations.
type Service struct {
	repo     Repository
	ifsc     IFSCResolver
	audit    shared.Auditor
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, ifsc IFSCResolver, audit shared.Auditor, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ifsc: ifsc, audit: audit, notifier: notifier, logger: logger}
}

// Create registers the caller's business.
func (s *Service) Create(ctx context.Context, principal shared.Principal, req CreateBusinessRequest) (*Business, error) {
	if _, err := s.repo.FindByProfile(ctx, principal.ProfileID); err == nil {
		return nil, fmt.Errorf("business already exists: %w", httpx.ErrDuplicate)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return nil, httpx.Invalid("business_name is required")
	}
	gstin := strings.ToUpper(strings.TrimSpace(req.GSTIN))
	if gstin != "" && !ValidGSTIN(gstin) {
		return nil, httpx.Invalid("invalid GSTIN %q", gstin)
	}

	created, err := s.repo.Create(ctx, Business{
		ProfileID:    principal.ProfileID,
		BusinessName: name,
		BusinessType: strings.TrimSpace(req.BusinessType),
		GSTIN:        gstin,
		Description:  strings.TrimSpace(req.Description),
		Phone:        req.Phone,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		LogoURL:      req.LogoURL,
	})
	if errors.Is(err, httpx.ErrDuplicate) {
		return nil, fmt.Errorf("business already exists: %w", httpx.ErrDuplicate)
	}
	return created, err
}

// Mine returns the caller's business.
func (s *Service) Mine(ctx context.Context, principal shared.Principal) (*Business, error) {
	return s.repo.FindByProfile(ctx, principal.ProfileID)
}

// ForProfile returns the business owned by a profile.
func (s *Service) ForProfile(ctx context.Context, profileID uuid.UUID) (*Business, error) {
	return s.repo.FindByProfile(ctx, profileID)
}

// Get returns any business by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Business, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateMine applies a partial update. Changing the legal name or GSTIN sends
// the business back to moderation.
func (s *Service) UpdateMine(ctx context.Context, principal shared.Principal, req UpdateBusinessRequest) (*Business, error) {
	b, err := s.repo.FindByProfile(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	legalChanged := false
	if req.BusinessName != nil {
		name := strings.TrimSpace(*req.BusinessName)
		if name == "" {
			return nil, httpx.Invalid("business_name cannot be blank")
		}
		legalChanged = legalChanged || name != b.BusinessName
		b.BusinessName = name
	}
	if req.GSTIN != nil {
		gstin := strings.ToUpper(strings.TrimSpace(*req.GSTIN))
		if gstin != "" && !ValidGSTIN(gstin) {
			return nil, httpx.Invalid("invalid GSTIN %q", gstin)
		}
		legalChanged = legalChanged || gstin != b.GSTIN
		b.GSTIN = gstin
	}
	if req.BusinessType != nil {
		b.BusinessType = strings.TrimSpace(*req.BusinessType)
	}
	if req.Description != nil {
		b.Description = strings.TrimSpace(*req.Description)
	}
	if req.Phone != nil {
		b.Phone = *req.Phone
	}
	if req.Email != nil {
		b.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.City != nil {
		b.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		b.State = strings.TrimSpace(*req.State)
	}
	if req.LogoURL != nil {
		b.LogoURL = *req.LogoURL
	}
	if legalChanged {
		b.Status = StatusPending
		b.RejectionReason = ""
		b.VerifiedAt = nil
	}
	return s.repo.Update(ctx, *b)
}

// PublicList lists verified businesses.
func (s *Service) PublicList(ctx context.Context, filter ListFilter) (shared.Page[Business], error) {
	filter.Status = StatusVerified
	return s.list(ctx, filter)
}

// PublicGet returns a verified business. Unverified ones are hidden.
func (s *Service) PublicGet(ctx context.Context, id uuid.UUID) (*Business, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsVerified() {
		return nil, fmt.Errorf("business: %w", httpx.ErrNotFound)
	}
	return b, nil
}

// AdminList lists businesses in any status.
func (s *Service) AdminList(ctx context.Context, filter ListFilter) (shared.Page[Business], error) {
	switch filter.Status {
	case "", StatusPending, StatusVerified, StatusRejected:
	default:
		return shared.Page[Business]{}, httpx.Invalid("unknown status %q", filter.Status)
	}
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter ListFilter) (shared.Page[Business], error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Page[Business]{}, err
	}
	return shared.NewPage(items, filter.Page, filter.PerPage, total), nil
}

// Review records an admin decision, audits it and tells the supplier.
func (s *Service) Review(ctx context.Context, actor shared.Principal, id uuid.UUID, req ReviewRequest) (*Business, error) {
	reason := strings.TrimSpace(req.Reason)
	switch req.Status {
	case StatusVerified:
		reason = ""
	case StatusRejected:
		if reason == "" {
			return nil, httpx.Invalid("reason is required when rejecting")
		}
	default:
		return nil, httpx.Invalid("status must be verified or rejected")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	b, err := s.repo.SetStatus(ctx, id, req.Status, reason)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ProfileID,
		Action:   "supplier.review",
		Entity:   "supplier_business",
		EntityID: b.ID.String(),
		Meta:     map[string]any{"status": string(b.Status), "reason": reason},
	}); err != nil {
		return nil, fmt.Errorf("audit review: %w", err)
	}

	title := "Business verified"
	message := fmt.Sprintf("%s is now verified and visible to buyers.", b.BusinessName)
	if b.Status == StatusRejected {
		title = "Business verification rejected"
		message = fmt.Sprintf("%s was rejected: %s", b.BusinessName, reason)
	}
	if err := s.notifier.Notify(ctx, b.ProfileID, title, message, "system", "/supplier/business"); err != nil {
		s.logger.Error("notify supplier review", slog.String("business_id", b.ID.String()), slog.Any("error", err))
	}
	return b, nil
}

// UpsertBank stores the caller's payout account after resolving the IFSC.
func (s *Service) UpsertBank(ctx context.Context, principal shared.Principal, req UpsertBankRequest) (*BankDetails, error) {
	b, err := s.repo.FindByProfile(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	holder := strings.TrimSpace(req.AccountHolder)
	if holder == "" {
		return nil, httpx.Invalid("account_holder is required")
	}
	branch, err := s.ifsc.Lookup(ctx, req.IFSC)
	if errors.Is(err, banking.ErrUnknownIFSC) {
		return nil, httpx.Invalid("unknown IFSC %q", banking.NormalizeIFSC(req.IFSC))
	}
	if err != nil {
		return nil, err
	}
	d, err := s.repo.UpsertBank(ctx, BankDetails{
		SupplierID:    b.ID,
		AccountHolder: holder,
		AccountNumber: req.AccountNumber,
		IFSC:          branch.IFSC,
		BankName:      branch.Bank,
		Branch:        branch.Branch,
		Status:        BankPending,
	})
	if err != nil {
		return nil, err
	}
	masked := d.Masked()
	return &masked, nil
}

// Bank returns the caller's payout account with the number masked.
func (s *Service) Bank(ctx context.Context, principal shared.Principal) (*BankDetails, error) {
	b, err := s.repo.FindByProfile(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.FindBank(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	masked := d.Masked()
	return &masked, nil
}
