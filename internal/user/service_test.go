package user

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/user/entity"
)

type memStore struct {
	users   map[string]*entity.User
	touched []string
	getErr  error
}

func newMemStore(users ...*entity.User) *memStore {
	m := &memStore{users: map[string]*entity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memStore) Create(_ context.Context, u *entity.User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*entity.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) ListMembers(context.Context) ([]entity.Member, error) {
	out := []entity.Member{}
	for _, u := range m.users {
		out = append(out, entity.Member{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memStore) TouchLastLogin(_ context.Context, id string) error {
	m.touched = append(m.touched, id)
	return nil
}

func (m *memStore) SetRole(_ context.Context, id, role string) (int64, error) {
	u, ok := m.users[id]
	if !ok {
		return 0, nil
	}
	u.Role = role
	return 1, nil
}

func allow(emails ...string) AllowList {
	return func(e string) bool {
		for _, a := range emails {
			if a == e {
				return true
			}
		}
		return false
	}
}

func TestLookupPrincipal(t *testing.T) {
	store := newMemStore(
		&entity.User{ID: "u1", Email: "a@example.com", Role: "ADMIN"},
		&entity.User{ID: "u2", Email: "b@example.com", Role: "OWNER"},
	)
	svc := NewUserService(store, nil, zap.NewNop().Sugar())

	p, err := svc.LookupPrincipal(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, session.Principal{ID: "u1", Role: access.RoleAdmin, Email: "a@example.com"}, p)

	_, err = svc.LookupPrincipal(context.Background(), "u2")
	assert.ErrorIs(t, err, access.ErrUnknownRole)

	_, err = svc.LookupPrincipal(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrUnknownPrincipal)

	store.getErr = errors.New("boom")
	_, err = svc.LookupPrincipal(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrUnknownPrincipal)
}

func TestSignInRejectsUnlistedEmail(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, allow("a@example.com"), zap.NewNop().Sugar())

	_, err := svc.SignIn(context.Background(), "mallory@example.com")
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Empty(t, store.users)

	_, err = svc.SignIn(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSignInCreatesMemberOnce(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, allow("a@example.com"), zap.NewNop().Sugar())

	u, err := svc.SignIn(context.Background(), "  A@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "USER", u.Role)
	assert.NotEmpty(t, u.ID)

	again, err := svc.SignIn(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Len(t, store.users, 1)
	assert.Equal(t, []string{u.ID, u.ID}, store.touched)
}

func TestSetRole(t *testing.T) {
	store := newMemStore(&entity.User{ID: "u1", Email: "a@example.com", Role: "USER"})
	svc := NewUserService(store, nil, zap.NewNop().Sugar())

	require.NoError(t, svc.SetRole(context.Background(), "a@example.com", access.RoleAdmin))
	assert.Equal(t, "ADMIN", store.users["u1"].Role)

	assert.ErrorIs(t, svc.SetRole(context.Background(), "a@example.com", access.Role("ROOT")), access.ErrUnknownRole)
	assert.ErrorIs(t, svc.SetRole(context.Background(), "x@example.com", access.RoleUser), ErrUserNotFound)
}
