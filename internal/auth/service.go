package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cadet-portal/cadet-portal/internal/audit"
	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/observability"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

var (
	errMissingCredentials = shared.Invalid("Missing credentials.")
	errInvalidCredentials = shared.Unauthorized("Invalid credentials.")
)

// CadetNotifier delivers a notification to one cadet.
type CadetNotifier interface {
	NotifyCadet(ctx context.Context, regimentalNumber string, n notifications.Notice) error
}

// Auditor records security-relevant events.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry)
}

// ServiceConfig collects the dependencies of Service.
type ServiceConfig struct {
	Repo        Repository
	Tokens      *TokenIssuer
	Revocations RevocationStore
	Notifier    CadetNotifier
	Audit       Auditor
	Metrics     *observability.Metrics
	Logger      *slog.Logger
	BcryptCost  int
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	tokens      *TokenIssuer
	revocations RevocationStore
	notifier    CadetNotifier
	audit       Auditor
	metrics     *observability.Metrics
	logger      *slog.Logger
	cost        int
}

// NewService constructs a new Service.
func NewService(cfg ServiceConfig) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = 12
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        cfg.Repo,
		tokens:      cfg.Tokens,
		revocations: cfg.Revocations,
		notifier:    cfg.Notifier,
		audit:       cfg.Audit,
		metrics:     cfg.Metrics,
		logger:      logger,
		cost:        cost,
	}
}

// Login resolves identifier against the cadet, super-admin and unit-admin
// tables in that order. The first table holding the identifier decides the
// outcome; a wrong password there never falls through to the next table.
// Pending or disabled accounts are rejected before the password is checked.
func (s *Service) Login(ctx context.Context, identifier, password, ip string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, errMissingCredentials
	}

	principal, hash, err := s.resolve(ctx, identifier)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, shared.ErrForbidden):
			outcome = "blocked"
		case errors.Is(err, shared.ErrUnauthorized):
			outcome = "invalid"
		}
		s.metrics.ObserveLogin(roleOf(principal), outcome)
		if outcome != "error" {
			s.record(ctx, principal, identifier, audit.ActionLoginFailed, ip)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.metrics.ObserveLogin(roleOf(principal), "invalid")
		s.record(ctx, principal, identifier, audit.ActionLoginFailed, ip)
		return nil, errInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLogin(roleOf(principal), "ok")
	s.record(ctx, principal, identifier, audit.ActionLogin, ip)
	return &LoginResult{
		Principal: principal,
		Token:     token,
		ExpiresAt: expiresAt,
		Redirect:  RedirectFor(principal),
	}, nil
}

// resolve finds the identity space holding identifier and applies its
// account gate. The returned principal is set whenever a space matched.
func (s *Service) resolve(ctx context.Context, identifier string) (shared.Principal, string, error) {
	cadet, err := s.repo.FindCadet(ctx, identifier)
	switch {
	case err == nil:
		p := shared.CadetPrincipal{ID: cadet.ID, RegimentalNumber: cadet.RegimentalNumber, UnitID: cadet.UnitID}
		if !cadet.IsApproved {
			return p, "", shared.Forbidden("User account pending approval.")
		}
		return p, cadet.PasswordHash, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, "", err
	}

	master, err := s.repo.FindMaster(ctx, identifier)
	switch {
	case err == nil:
		p := shared.MasterPrincipal{Phone: master.Phone}
		if !master.IsActive {
			return p, "", shared.Forbidden("Master account disabled.")
		}
		return p, master.PasswordHash, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, "", err
	}

	admin, err := s.repo.FindAdmin(ctx, identifier)
	switch {
	case err == nil:
		p := shared.AdminPrincipal{ID: admin.ID, UnitID: admin.UnitID, Designation: admin.Designation}
		if !admin.IsApproved {
			return p, "", shared.Forbidden("Admin account pending approval.")
		}
		return p, admin.PasswordHash, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, "", err
	}

	return nil, "", errInvalidCredentials
}

// RegisterCadet creates an unapproved cadet account.
func (s *Service) RegisterCadet(ctx context.Context, in NewCadet) error {
	exists, err := s.repo.CadetExists(ctx, in.Email, in.RegimentalNumber)
	if err != nil {
		return err
	}
	if exists {
		return shared.Duplicate("User already exists.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return err
	}
	if err := s.repo.CreateCadet(ctx, in, string(hash)); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return shared.Duplicate("User already exists.")
		}
		return err
	}
	return nil
}

// RegisterAdmin creates a unit-admin account pending super-admin approval.
func (s *Service) RegisterAdmin(ctx context.Context, in NewAdmin) error {
	exists, err := s.repo.AdminExists(ctx, in.Email, in.UnitID)
	if err != nil {
		return err
	}
	if exists {
		return shared.Duplicate("Admin already registered.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return err
	}
	if err := s.repo.CreateAdmin(ctx, in, string(hash)); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return shared.Duplicate("Admin already registered.")
		}
		return err
	}
	return nil
}

// ListUnits returns approved unit-admins for the registration form.
func (s *Service) ListUnits(ctx context.Context) ([]UnitAdmin, error) {
	return s.repo.ListApprovedAdmins(ctx)
}

// Verify checks a raw token end to end, including revocation.
func (s *Service) Verify(ctx context.Context, raw string) (*Claims, shared.Principal, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}
	p, err := claims.Principal()
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}
	return claims, p, nil
}

// Logout revokes raw until its natural expiry. Unparseable or already
// expired tokens need no revocation.
func (s *Service) Logout(ctx context.Context, raw, ip string) error {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.RegisteredClaims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	if p, err := claims.Principal(); err == nil {
		s.record(ctx, p, "", audit.ActionLogout, ip)
	}
	return nil
}

// ChangePassword replaces the caller's password after checking the current
// one. Cadets are notified of the change.
func (s *Service) ChangePassword(ctx context.Context, p shared.Principal, current, next, ip string) error {
	if p == nil {
		return shared.Forbidden("Not authorized to change password.")
	}
	if current == "" || next == "" {
		return shared.Invalid("Both current and new passwords are required.")
	}
	hash, err := s.repo.PasswordHash(ctx, p)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("User not found.")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return shared.Unauthorized("Current password is incorrect.")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(next)) == nil {
		return shared.Invalid("New password cannot be the same as the current password.")
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return err
	}
	if err := s.repo.SetPasswordHash(ctx, p, string(newHash)); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("User not found.")
		}
		return err
	}
	s.record(ctx, p, "", audit.ActionPasswordChange, ip)

	if cadet, ok := shared.AsCadet(p); ok && s.notifier != nil {
		return s.notifier.NotifyCadet(ctx, cadet.RegimentalNumber, notifications.Notice{
			Type:    notifications.TypePassword,
			Message: "Your password was changed successfully.",
			Link:    "/cadet/profile",
		})
	}
	return nil
}

func (s *Service) record(ctx context.Context, p shared.Principal, fallbackID, action, ip string) {
	if s.audit == nil {
		return
	}
	userType, userID := "unknown", fallbackID
	if p != nil {
		userType, userID = string(p.Role()), shared.Subject(p)
	}
	s.audit.Record(ctx, audit.Entry{UserType: userType, UserID: userID, Action: action, IPAddress: ip})
}

func roleOf(p shared.Principal) string {
	if p == nil {
		return ""
	}
	return string(p.Role())
}

// TokenTTL exposes the validity window used for cookies.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.ttl
}
