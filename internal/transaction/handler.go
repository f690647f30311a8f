package transaction

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit"
	auditentity "github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/web"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// HistorySource lists audit entries; *auditrepo.AuditRepo satisfies it.
type HistorySource interface {
	ListByEntity(ctx context.Context, entityType, entityID string) ([]auditentity.Entry, error)
}

// Handler exposes HTTP endpoints for transactions.
type Handler struct {
	svc     *Service
	history HistorySource
	logger  *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// WithHistory enables the History endpoint.
func (h *Handler) WithHistory(src HistorySource) *Handler {
	h.history = src
	return h
}

// List handles GET /api/transactions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := web.ReadTarget(w, r)
	if !ok {
		return
	}
	f, errs := parseFilter(r)
	if len(errs) > 0 {
		web.WriteValidation(w, errs)
		return
	}
	page, err := h.svc.List(r.Context(), owner, f)
	if err != nil {
		h.logger.Errorw("error fetching transactions", "owner", owner, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteJSON(w, http.StatusOK, web.Envelope{
		Success:    true,
		Data:       page.Items,
		Pagination: web.NewPagination(page.Total, f.Page, f.Limit),
	})
}

// Get handles GET /api/transactions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := web.ReadTarget(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !utilities.IsRecordID(id) {
		web.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	t, err := h.svc.Get(r.Context(), owner, id)
	if err != nil {
		h.writeErr(w, "error fetching transaction", err)
		return
	}
	web.WriteData(w, t)
}

// History handles GET /api/transactions/{id}/history. The transaction must
// be visible to the caller under the same rules as Get.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	owner, ok := web.ReadTarget(w, r)
	if !ok {
		return
	}
	if h.history == nil {
		web.WriteError(w, http.StatusNotFound, "Not Found")
		return
	}
	id := chi.URLParam(r, "id")
	if !utilities.IsRecordID(id) {
		web.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if _, err := h.svc.Get(r.Context(), owner, id); err != nil {
		h.writeErr(w, "error fetching transaction", err)
		return
	}
	entries, err := h.history.ListByEntity(r.Context(), entityType, id)
	if err != nil {
		h.logger.Errorw("error fetching transaction history", "id", id, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteData(w, entries)
}

// Create handles POST /api/transactions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := web.WriteTarget(w, r)
	if !ok {
		return
	}
	var req createRequest
	if !web.DecodeJSON(w, r, &req) {
		return
	}
	in, errs := req.validate()
	if len(errs) > 0 {
		web.WriteValidation(w, errs)
		return
	}
	t, err := h.svc.Create(r.Context(), actorOf(r, p), in)
	if err != nil {
		h.logger.Errorw("error creating transaction", "user_id", p.ID, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteJSON(w, http.StatusCreated, web.Envelope{Success: true, Data: t, Message: "transaction created"})
}

// Update handles PUT /api/transactions/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := web.WriteTarget(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !utilities.IsRecordID(id) {
		web.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	var req updateRequest
	if !web.DecodeJSON(w, r, &req) {
		return
	}
	patch, errs := req.validate()
	if len(errs) > 0 {
		web.WriteValidation(w, errs)
		return
	}
	t, err := h.svc.Update(r.Context(), actorOf(r, p), id, patch)
	if err != nil {
		h.writeErr(w, "error updating transaction", err)
		return
	}
	web.WriteJSON(w, http.StatusOK, web.Envelope{Success: true, Data: t, Message: "transaction updated"})
}

// Delete handles DELETE /api/transactions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := web.WriteTarget(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !utilities.IsRecordID(id) {
		web.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err := h.svc.Delete(r.Context(), actorOf(r, p), id); err != nil {
		h.writeErr(w, "error deleting transaction", err)
		return
	}
	web.WriteJSON(w, http.StatusOK, web.Envelope{Success: true, Message: "transaction deleted"})
}

func (h *Handler) writeErr(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, ErrNotFound) {
		web.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	h.logger.Errorw(msg, "err", err)
	web.WriteInternal(w)
}

func actorOf(r *http.Request, p session.Principal) Actor {
	ip, ua := audit.RequestMeta(r)
	return Actor{UserID: p.ID, IPAddress: ip, UserAgent: ua}
}

func parseFilter(r *http.Request) (entity.Filter, []web.FieldError) {
	q := r.URL.Query()
	f := entity.Filter{Page: 1, Limit: defaultLimit}
	var errs []web.FieldError

	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			errs = append(errs, web.FieldError{Field: "page", Message: "must be a positive integer"})
		} else {
			f.Page = n
		}
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			errs = append(errs, web.FieldError{Field: "limit", Message: "must be a positive integer"})
		} else {
			f.Limit = min(n, maxLimit)
		}
	}
	from, to, dateErrs := web.DateRange(q)
	errs = append(errs, dateErrs...)
	f.From, f.To = from, to
	if s := q.Get("type"); s != "" {
		t := entity.Type(strings.ToUpper(s))
		if !t.Valid() {
			errs = append(errs, web.FieldError{Field: "type", Message: "must be INCOME or EXPENSE"})
		} else {
			f.Type = t
		}
	}
	if s := q.Get("categoryId"); s != "" {
		if !utilities.IsRecordID(s) {
			errs = append(errs, web.FieldError{Field: "categoryId", Message: "must be a valid id"})
		} else {
			f.CategoryID = s
		}
	}
	return f, errs
}
