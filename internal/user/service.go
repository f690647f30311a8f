package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// Store is the persistence the service needs; *repo.UserRepo satisfies it.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListMembers(ctx context.Context) ([]entity.Member, error)
	TouchLastLogin(ctx context.Context, id string) error
	SetRole(ctx context.Context, id, role string) (int64, error)
}

// AllowList decides whether an email may sign in at all.
type AllowList func(email string) bool

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNotAllowed   = errors.New("email not allowed")
	ErrInvalidEmail = errors.New("invalid email")
)

// UserService manages household members and feeds principals to the
// session middleware.
type UserService struct {
	repo    Store
	allowed AllowList
	logger  *zap.SugaredLogger
}

func NewUserService(r Store, allowed AllowList, logger *zap.SugaredLogger) *UserService {
	if allowed == nil {
		allowed = func(string) bool { return false }
	}
	return &UserService{repo: r, allowed: allowed, logger: logger}
}

// LookupPrincipal implements session.PrincipalSource. The stored role is
// parsed into the closed enum here; unknown values are an error.
func (s *UserService) LookupPrincipal(ctx context.Context, id string) (session.Principal, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Principal{}, session.ErrUnknownPrincipal
		}
		return session.Principal{}, fmt.Errorf("load user: %w", err)
	}
	role, err := access.ParseRole(u.Role)
	if err != nil {
		return session.Principal{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	return session.Principal{ID: u.ID, Role: role, Email: u.Email}, nil
}

// SignIn admits an allow-listed email, creating the member on first
// sign-in with the USER role, and stamps the last login.
func (s *UserService) SignIn(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if !s.allowed(email) {
		s.logger.Warnw("unauthorized login attempt", "email", email)
		return nil, ErrNotAllowed
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		u = &entity.User{ID: utilities.NewKSUID(), Email: email, Role: string(access.RoleUser)}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.Infow("created household member", "user_id", u.ID)
	}
	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		s.logger.Warnw("failed to update last login", "user_id", u.ID, "err", err)
	}
	return u, nil
}

// ListMembers returns the household members for the target selector.
func (s *UserService) ListMembers(ctx context.Context) ([]entity.Member, error) {
	return s.repo.ListMembers(ctx)
}

// TouchLastLogin stamps the caller's last login.
func (s *UserService) TouchLastLogin(ctx context.Context, id string) error {
	return s.repo.TouchLastLogin(ctx, id)
}

// SetRole promotes or demotes a member.
func (s *UserService) SetRole(ctx context.Context, email string, role access.Role) error {
	if !role.Valid() {
		return access.ErrUnknownRole
	}
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	n, err := s.repo.SetRole(ctx, u.ID, string(role))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
