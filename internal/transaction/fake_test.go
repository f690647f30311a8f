package transaction

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	auditentity "github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
)

// memStore is an in-memory Store that records which owners were queried.
type memStore struct {
	rows    map[string]*entity.Transaction
	queried []string
	owners  []access.OwnerSet
}

func newMemStore(rows ...entity.Transaction) *memStore {
	m := &memStore{rows: map[string]*entity.Transaction{}}
	for i := range rows {
		t := rows[i]
		m.rows[t.ID] = &t
	}
	return m
}

func (m *memStore) List(_ context.Context, ownerID string, f entity.Filter) ([]entity.Transaction, int, error) {
	m.queried = append(m.queried, ownerID)
	var all []entity.Transaction
	for _, t := range m.rows {
		if t.UserID != ownerID || t.DeletedAt != nil {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TransactionDate.After(all[j].TransactionDate) })
	total := len(all)
	start := min(f.Offset(), total)
	end := min(start+f.Limit, total)
	return all[start:end], total, nil
}

func (m *memStore) Get(_ context.Context, ownerID, id string) (*entity.Transaction, error) {
	m.queried = append(m.queried, ownerID)
	t, ok := m.rows[id]
	if !ok || t.UserID != ownerID || t.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (m *memStore) Create(_ context.Context, t *entity.Transaction) error {
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	c := *t
	m.rows[t.ID] = &c
	return nil
}

func (m *memStore) Update(_ context.Context, t *entity.Transaction) (int64, error) {
	cur, ok := m.rows[t.ID]
	if !ok || cur.UserID != t.UserID || cur.DeletedAt != nil {
		return 0, nil
	}
	c := *t
	m.rows[t.ID] = &c
	return 1, nil
}

func (m *memStore) SoftDelete(_ context.Context, ownerID, id string) (int64, error) {
	cur, ok := m.rows[id]
	if !ok || cur.UserID != ownerID || cur.DeletedAt != nil {
		return 0, nil
	}
	now := time.Now().UTC()
	cur.DeletedAt = &now
	return 1, nil
}

func (m *memStore) Totals(_ context.Context, owners access.OwnerSet, _, _ *time.Time) ([]entity.OwnerTotals, error) {
	m.owners = append(m.owners, owners)
	by := map[string]*entity.OwnerTotals{}
	for _, t := range m.rows {
		if t.DeletedAt != nil || (!owners.Unrestricted() && !owners.Contains(t.UserID)) {
			continue
		}
		ot, ok := by[t.UserID]
		if !ok {
			ot = &entity.OwnerTotals{UserID: t.UserID}
			by[t.UserID] = ot
		}
		if t.Type == entity.TypeIncome {
			ot.Income = ot.Income.Add(t.Amount)
		} else {
			ot.Expense = ot.Expense.Add(t.Amount)
		}
		ot.Count++
	}
	out := []entity.OwnerTotals{}
	for _, ot := range by {
		out = append(out, *ot)
	}
	return out, nil
}

type recorder struct {
	mu      sync.Mutex
	entries []auditentity.Entry
}

func (r *recorder) Record(_ context.Context, e auditentity.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recorder) ListByEntity(_ context.Context, entityType, entityID string) ([]auditentity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []auditentity.Entry{}
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// historyOf avoids handing a typed nil to WithHistory.
func historyOf(r *recorder) HistorySource {
	if r == nil {
		return nil
	}
	return r
}
