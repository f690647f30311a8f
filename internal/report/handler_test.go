package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
)

type fakeTotals struct {
	calls []access.OwnerSet
	from  *time.Time
	to    *time.Time
}

func (f *fakeTotals) Totals(_ context.Context, owners access.OwnerSet, from, to *time.Time) ([]entity.OwnerTotals, error) {
	f.calls = append(f.calls, owners)
	f.from, f.to = from, to
	return []entity.OwnerTotals{
		{UserID: "u1", Income: decimal.NewFromInt(100), Expense: decimal.RequireFromString("40.5"), Count: 3},
		{UserID: "u2", Income: decimal.NewFromInt(10), Expense: decimal.NewFromInt(20), Count: 2},
	}, nil
}

func get(h *Handler, p session.Principal, target string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r = r.WithContext(session.WithPrincipal(r.Context(), p))
	rec := httptest.NewRecorder()
	h.Summary(rec, r)
	return rec
}

func TestSummaryOwnerScoping(t *testing.T) {
	tests := []struct {
		name   string
		p      session.Principal
		query  string
		status int
		owners access.OwnerSet
	}{
		{"admin everyone", session.Principal{ID: "u1", Role: access.RoleAdmin}, "", http.StatusOK, access.OwnerSet{}},
		{"admin one", session.Principal{ID: "u1", Role: access.RoleAdmin}, "?viewUserId=u2", http.StatusOK, access.OwnerSet{"u2"}},
		{"user self", session.Principal{ID: "u1", Role: access.RoleUser}, "", http.StatusOK, access.OwnerSet{"u1"}},
		{"user other", session.Principal{ID: "u1", Role: access.RoleUser}, "?viewUserId=u2", http.StatusForbidden, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeTotals{}
			rec := get(NewHandler(src, zap.NewNop().Sugar()), tt.p, "/api/reports/summary"+tt.query)
			require.Equal(t, tt.status, rec.Code)
			if tt.owners == nil {
				assert.Empty(t, src.calls)
				return
			}
			require.Len(t, src.calls, 1)
			assert.Equal(t, tt.owners, src.calls[0])
		})
	}
}

func TestSummaryBody(t *testing.T) {
	src := &fakeTotals{}
	rec := get(NewHandler(src, zap.NewNop().Sugar()), session.Principal{ID: "u1", Role: access.RoleAdmin},
		"/api/reports/summary?startDate=2025-01-01&endDate=2025-01-31")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, src.from)
	require.NotNil(t, src.to)

	var body struct {
		Data Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data.Owners, 2)
	assert.True(t, body.Data.Income.Equal(decimal.NewFromInt(110)))
	assert.True(t, body.Data.Expense.Equal(decimal.RequireFromString("60.5")))
	assert.True(t, body.Data.Balance.Equal(decimal.RequireFromString("49.5")))
	assert.True(t, body.Data.Owners[1].Balance.Equal(decimal.NewFromInt(-10)))
}

func TestSummaryBadRange(t *testing.T) {
	src := &fakeTotals{}
	rec := get(NewHandler(src, zap.NewNop().Sugar()), session.Principal{ID: "u1", Role: access.RoleUser},
		"/api/reports/summary?startDate=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, src.calls)
}
