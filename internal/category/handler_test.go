package category

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/category/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
)

type memStore struct {
	rows    []*entity.Category
	queried []string
}

func (m *memStore) List(_ context.Context, ownerID string, kind entity.Kind) ([]entity.Category, error) {
	m.queried = append(m.queried, ownerID)
	out := []entity.Category{}
	for _, c := range m.rows {
		if c.UserID == ownerID && c.ParentID == nil && c.IsActive && (kind == "" || c.Type == kind) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memStore) Get(_ context.Context, ownerID, id string) (*entity.Category, error) {
	for _, c := range m.rows {
		if c.ID == id && c.UserID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) ListChildren(_ context.Context, parentID string) ([]entity.Category, error) {
	out := []entity.Category{}
	for _, c := range m.rows {
		if c.ParentID != nil && *c.ParentID == parentID && c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, c *entity.Category) error {
	cp := *c
	m.rows = append(m.rows, &cp)
	return nil
}

const (
	food   = "11111111-1111-4111-8111-111111111111"
	salary = "22222222-2222-4222-8222-222222222222"
	snacks = "33333333-3333-4333-8333-333333333333"
)

func seeded() *memStore {
	parent := food
	return &memStore{rows: []*entity.Category{
		entity.NewCategory(food, "u1", "Food", entity.KindExpense, "#ff0000", 2, true),
		entity.NewCategory(salary, "u2", "Salary", entity.KindIncome, "#00ff00", 1, true),
		{ID: snacks, UserID: "u1", ParentID: &parent, Name: "Snacks", Type: entity.KindExpense, IsActive: true},
	}}
}

func serve(store *memStore, p session.Principal, method, target, body string) *httptest.ResponseRecorder {
	h := NewHandler(NewService(store), zap.NewNop().Sugar())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithPrincipal(req.Context(), p)))
		})
	})
	r.Get("/api/categories", h.List)
	r.Post("/api/categories", h.Create)
	r.Get("/api/categories/{id}/subcategories", h.Subcategories)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

var (
	admin = session.Principal{ID: "u1", Role: access.RoleAdmin}
	user  = session.Principal{ID: "u1", Role: access.RoleUser}
)

func TestListScopesToTarget(t *testing.T) {
	store := seeded()
	rec := serve(store, admin, http.MethodGet, "/api/categories?viewUserId=u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Salary")
	assert.NotContains(t, rec.Body.String(), "Food")
	assert.Equal(t, []string{"u2"}, store.queried)
}

func TestListDeniedForUser(t *testing.T) {
	store := seeded()
	rec := serve(store, user, http.MethodGet, "/api/categories?viewUserId=u2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.queried)
}

func TestSubcategories(t *testing.T) {
	rec := serve(seeded(), user, http.MethodGet, "/api/categories/"+food+"/subcategories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Snacks")

	rec = serve(seeded(), user, http.MethodGet, "/api/categories/"+salary+"/subcategories", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSubcategoryInheritsType(t *testing.T) {
	store := seeded()
	rec := serve(store, user, http.MethodPost, "/api/categories", `{"name":"Coffee","parentId":"`+food+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	last := store.rows[len(store.rows)-1]
	assert.Equal(t, "Coffee", last.Name)
	assert.Equal(t, entity.KindExpense, last.Type)
	assert.Equal(t, "#000000", last.Color)
	require.NotNil(t, last.ParentID)
	assert.Equal(t, food, *last.ParentID)
}

func TestCreateValidation(t *testing.T) {
	store := seeded()
	rec := serve(store, user, http.MethodPost, "/api/categories", `{"name":" ","type":"other","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name"`)
	assert.Contains(t, rec.Body.String(), `"type"`)
	assert.Contains(t, rec.Body.String(), `"color"`)
	assert.Len(t, store.rows, 3)
}

func TestCreateUnderForeignParent(t *testing.T) {
	rec := serve(seeded(), user, http.MethodPost, "/api/categories", `{"name":"Bonus","parentId":"`+salary+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "parent category not found")
}

func TestCreateWhileViewingDenied(t *testing.T) {
	store := seeded()
	rec := serve(store, admin, http.MethodPost, "/api/categories?viewUserId=u2", `{"name":"Gifts","type":"INCOME"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, store.rows, 3)
}
