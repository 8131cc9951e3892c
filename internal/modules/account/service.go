package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

// Service registers accounts and checks login credentials.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Account, error)
	// Verify answers UNAUTHORIZED for both an unknown email and a wrong
	// password so callers cannot probe which emails exist.
	Verify(ctx context.Context, role Role, email, password string) (*Account, error)
}

func invalidCredentials() error {
	return apperr.New(apperr.KindUnauthorized, "invalid credentials")
}

type service struct {
	repo Repository
	logg *logger.Logger
	cost int
}

func NewService(repo Repository, logg *logger.Logger) Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, cost: bcrypt.DefaultCost}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	if !req.Role.Valid() {
		return nil, apperr.New(apperr.KindValidation, "invalid role").
			WithDetails(map[string]any{"role": string(req.Role)})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.New(apperr.KindValidation, "name, email and password are required")
	}

	c := &credentials{
		Account: Account{ID: uuid.New(), Name: req.Name, Role: req.Role},
		Email:   req.Email,
	}
	if req.Role == RoleMarketplaceManager {
		c.Location = strings.TrimSpace(req.Location)
		c.ManagerID = strings.TrimSpace(req.ManagerID)
		if c.Location == "" || c.ManagerID == "" {
			return nil, apperr.New(apperr.KindValidation, "location and manager_id are required for marketplace managers")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "password cannot be hashed")
	}
	c.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, req.Role, c); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"account_id": c.ID.String(),
		"role":       string(req.Role),
	}), "account.registered")
	return &c.Account, nil
}

func (s *service) Verify(ctx context.Context, role Role, email, password string) (*Account, error) {
	if !role.Valid() {
		return nil, apperr.New(apperr.KindValidation, "invalid role")
	}
	c, err := s.repo.FindByEmail(ctx, role, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logg.Error(ctx, "account.hash_compare_failed", err)
		}
		return nil, invalidCredentials()
	}
	return &c.Account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
