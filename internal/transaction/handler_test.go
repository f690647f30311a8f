package transaction

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
)

func newTestRouter(store *memStore, rec *recorder, p session.Principal) http.Handler {
	var audit Recorder
	if rec != nil {
		audit = rec
	}
	h := NewHandler(NewService(store, audit), zap.NewNop().Sugar()).WithHistory(historyOf(rec))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithPrincipal(req.Context(), p)))
		})
	})
	r.Get("/api/transactions", h.List)
	r.Post("/api/transactions", h.Create)
	r.Get("/api/transactions/{id}", h.Get)
	r.Put("/api/transactions/{id}", h.Update)
	r.Delete("/api/transactions/{id}", h.Delete)
	r.Get("/api/transactions/{id}/history", h.History)
	return r
}

var (
	adminU1 = session.Principal{ID: "u1", Role: access.RoleAdmin}
	userU1  = session.Principal{ID: "u1", Role: access.RoleUser}
)

func TestListAdminViewsOther(t *testing.T) {
	store := newMemStore(seed()...)
	srv := newTestRouter(store, nil, adminU1)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?viewUserId=u2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u2"}, store.queried)

	var body struct {
		Success    bool              `json:"success"`
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			Total      int `json:"total"`
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Pagination.Total)
	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, 20, body.Pagination.Limit)
	assert.Equal(t, 1, body.Pagination.TotalPages)
}

func TestListUserCannotViewOther(t *testing.T) {
	store := newMemStore(seed()...)
	srv := newTestRouter(store, nil, userU1)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?viewUserId=u2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"access denied"}`, rec.Body.String())
	assert.Empty(t, store.queried)
}

func TestListDefaultsToSelf(t *testing.T) {
	store := newMemStore(seed()...)
	srv := newTestRouter(store, nil, userU1)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u1"}, store.queried)
	assert.Contains(t, rec.Body.String(), `"limit":100`)
}

func TestListRejectsBadFilter(t *testing.T) {
	store := newMemStore()
	srv := newTestRouter(store, nil, userU1)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?type=refund&page=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Validation Error"`)
	assert.Empty(t, store.queried)
}

func TestGetOtherOwnerNotFound(t *testing.T) {
	srv := newTestRouter(newMemStore(seed()...), nil, userU1)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions/"+tx2, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Transaction not found"}`, rec.Body.String())
}

func TestCreate(t *testing.T) {
	store := newMemStore()
	rec := &recorder{}
	srv := newTestRouter(store, rec, userU1)

	body := `{"type":"expense","amount":"42.10","categoryId":"` + cat1 + `","transactionDate":"2025-04-02"}`
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.rows, 1)
	for _, row := range store.rows {
		assert.Equal(t, "u1", row.UserID)
		assert.Equal(t, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), row.TransactionDate)
	}
	assert.Len(t, rec.entries, 1)
}

func TestCreateValidation(t *testing.T) {
	store := newMemStore()
	srv := newTestRouter(store, nil, userU1)

	body := `{"type":"gift","amount":-3,"categoryId":"nope","transactionDate":"yesterday"}`
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Validation Error", resp.Error)
	var fields []string
	for _, d := range resp.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"type", "amount", "categoryId", "transactionDate"}, fields)
	assert.Empty(t, store.rows)
}

func TestMutationWhileViewingIsDenied(t *testing.T) {
	store := newMemStore(seed()...)
	rec := &recorder{}
	srv := newTestRouter(store, rec, adminU1)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/transactions/"+tx2+"?viewUserId=u2", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, store.rows[tx2].DeletedAt)
	assert.Empty(t, rec.entries)
}

func TestUpdateAndDelete(t *testing.T) {
	store := newMemStore(seed()...)
	rec := &recorder{}
	srv := newTestRouter(store, rec, userU1)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/transactions/"+tx1, strings.NewReader(`{"vendor":"Corner Shop"}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Corner Shop", *store.rows[tx1].Vendor)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/transactions/"+tx1, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, store.rows[tx1].DeletedAt)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/transactions/"+tx1, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, rec.entries, 2)
}

func TestHistoryVisibleOnlyToOwner(t *testing.T) {
	store := newMemStore(seed()...)
	rec := &recorder{}
	srv := newTestRouter(store, rec, userU1)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/transactions/"+tx1, strings.NewReader(`{"description":"lunch"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions/"+tx1+"/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"UPDATE"`)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions/"+tx2+"/history", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
