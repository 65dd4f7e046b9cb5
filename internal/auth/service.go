package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	cost int
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates a buyer or supplier profile.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	role := shared.Role(req.Role)
	if role != shared.RoleBuyer && role != shared.RoleSupplier {
		return nil, httpx.Invalid("role must be buyer or supplier")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	profile, err := s.repo.CreateProfile(ctx, Profile{
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			return nil, fmt.Errorf("email already registered: %w", httpx.ErrDuplicate)
		}
		return nil, err
	}
	return profile, nil
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Profile, error) {
	profile, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !profile.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return profile, nil
}

// Profile loads the profile for id.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile patches the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		if trimmed == "" {
			return nil, httpx.Invalid("full_name cannot be blank")
		}
		req.FullName = &trimmed
	}
	return s.repo.UpdateProfile(ctx, id, req)
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, profileID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, profileID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
