// Package report serves aggregate views across one or more owners. It is the
// only consumer of bulk owner resolution.
package report

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/web"
)

// TotalsSource aggregates transactions per owner; *transaction.Service
// satisfies it.
type TotalsSource interface {
	Totals(ctx context.Context, owners access.OwnerSet, from, to *time.Time) ([]entity.OwnerTotals, error)
}

// OwnerSummary is one owner's line in the summary.
type OwnerSummary struct {
	UserID  string          `json:"userId"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}

// Summary is the body of GET /api/reports/summary.
type Summary struct {
	From    *time.Time      `json:"from,omitempty"`
	To      *time.Time      `json:"to,omitempty"`
	Owners  []OwnerSummary  `json:"owners"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type Handler struct {
	src    TotalsSource
	logger *zap.SugaredLogger
}

func NewHandler(src TotalsSource, logger *zap.SugaredLogger) *Handler {
	return &Handler{src: src, logger: logger}
}

// Summary handles GET /api/reports/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	owners, ok := web.ReadOwners(w, r)
	if !ok {
		return
	}
	from, to, errs := web.DateRange(r.URL.Query())
	if len(errs) > 0 {
		web.WriteValidation(w, errs)
		return
	}
	totals, err := h.src.Totals(r.Context(), owners, from, to)
	if err != nil {
		h.logger.Errorw("error building summary", "owners", []string(owners), "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteData(w, Summarize(totals, from, to))
}

// Summarize folds per-owner totals into a Summary.
func Summarize(totals []entity.OwnerTotals, from, to *time.Time) Summary {
	s := Summary{From: from, To: to, Owners: make([]OwnerSummary, 0, len(totals))}
	for _, t := range totals {
		s.Owners = append(s.Owners, OwnerSummary{
			UserID:  t.UserID,
			Income:  t.Income,
			Expense: t.Expense,
			Balance: t.Balance(),
			Count:   t.Count,
		})
		s.Income = s.Income.Add(t.Income)
		s.Expense = s.Expense.Add(t.Expense)
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}
