package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	catentity "github.com/ovaphlow/pitchfork/service-ledger-go/internal/category/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/report"
	txentity "github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
	userentity "github.com/ovaphlow/pitchfork/service-ledger-go/internal/user/entity"
	vendorentity "github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors/entity"
)

// TransactionQuery mirrors the listing filters. Zero values are omitted.
type TransactionQuery struct {
	StartDate  string
	EndDate    string
	Type       string
	CategoryID string
	Page       int
	Limit      int
}

func (q TransactionQuery) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("startDate", q.StartDate)
	set("endDate", q.EndDate)
	set("type", q.Type)
	set("categoryId", q.CategoryID)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// NewTransaction is the body of a create call.
type NewTransaction struct {
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      string          `json:"categoryId"`
	SubcategoryID   *string         `json:"subcategoryId,omitempty"`
	Vendor          *string         `json:"vendor,omitempty"`
	Description     *string         `json:"description,omitempty"`
	TransactionDate string          `json:"transactionDate"`
}

// Members lists the household for the target selector.
func (c *Client) Members(ctx context.Context) ([]userentity.Member, error) {
	var out []userentity.Member
	_, err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out)
	return out, err
}

func (c *Client) Transactions(ctx context.Context, q TransactionQuery) (Result[[]txentity.Transaction], error) {
	return scoped[[]txentity.Transaction](ctx, c, "/api/transactions", q.values())
}

func (c *Client) Categories(ctx context.Context, kind string) (Result[[]catentity.Category], error) {
	q := url.Values{}
	if kind != "" {
		q.Set("type", kind)
	}
	return scoped[[]catentity.Category](ctx, c, "/api/categories", q)
}

func (c *Client) Subcategories(ctx context.Context, categoryID string) (Result[[]catentity.Category], error) {
	return scoped[[]catentity.Category](ctx, c, "/api/categories/"+url.PathEscape(categoryID)+"/subcategories", nil)
}

func (c *Client) Vendors(ctx context.Context, kind string) (Result[[]vendorentity.Vendor], error) {
	q := url.Values{}
	if kind != "" {
		q.Set("type", kind)
	}
	return scoped[[]vendorentity.Vendor](ctx, c, "/api/vendors", q)
}

// Summary asks for per-owner totals. In the Self state an ADMIN sends its own
// id, so the household-wide view needs AllMembers.
func (c *Client) Summary(ctx context.Context, startDate, endDate string) (Result[report.Summary], error) {
	q := url.Values{}
	if startDate != "" {
		q.Set("startDate", startDate)
	}
	if endDate != "" {
		q.Set("endDate", endDate)
	}
	return scoped[report.Summary](ctx, c, "/api/reports/summary", q)
}

// AllMembersSummary omits viewUserId. ADMIN gets every member; the server
// narrows USER to the caller.
func (c *Client) AllMembersSummary(ctx context.Context, startDate, endDate string) (report.Summary, error) {
	q := url.Values{}
	if startDate != "" {
		q.Set("startDate", startDate)
	}
	if endDate != "" {
		q.Set("endDate", endDate)
	}
	var out report.Summary
	_, err := c.do(ctx, http.MethodGet, "/api/reports/summary", q, nil, &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, in NewTransaction) (*txentity.Transaction, error) {
	var out txentity.Transaction
	if err := c.mutate(ctx, http.MethodPost, "/api/transactions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
}
