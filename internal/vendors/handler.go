package vendors

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/web"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// Store is the persistence the handler needs; *repo.VendorRepo satisfies it.
type Store interface {
	List(ctx context.Context, ownerID string, kind entity.Kind) ([]entity.Vendor, error)
	Create(ctx context.Context, v *entity.Vendor) error
}

// Handler exposes HTTP endpoints for vendors. There is no business logic
// beyond validation, so it talks to the store directly.
type Handler struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewHandler(store Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{store: store, logger: logger}
}

type createRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	SortOrder int    `json:"sortOrder"`
}

// List handles GET /api/vendors.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := web.ReadTarget(w, r)
	if !ok {
		return
	}
	var kind entity.Kind
	if s := r.URL.Query().Get("type"); s != "" {
		kind = entity.Kind(strings.ToUpper(s))
		if !kind.Valid() {
			web.WriteValidation(w, []web.FieldError{{Field: "type", Message: "unknown vendor type"}})
			return
		}
	}
	vendors, err := h.store.List(r.Context(), owner, kind)
	if err != nil {
		h.logger.Errorw("error fetching vendors", "owner", owner, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteData(w, vendors)
}

// Create handles POST /api/vendors.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := web.WriteTarget(w, r)
	if !ok {
		return
	}
	var req createRequest
	if !web.DecodeJSON(w, r, &req) {
		return
	}
	v := &entity.Vendor{
		ID:        utilities.NewRecordID(),
		UserID:    p.ID,
		Name:      strings.TrimSpace(req.Name),
		Type:      entity.Kind(strings.ToUpper(strings.TrimSpace(req.Type))),
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if v.Type == "" {
		v.Type = entity.KindGeneral
	}
	var errs []web.FieldError
	if v.Name == "" {
		errs = append(errs, web.FieldError{Field: "name", Message: "is required"})
	}
	if !v.Type.Valid() {
		errs = append(errs, web.FieldError{Field: "type", Message: "unknown vendor type"})
	}
	if len(errs) > 0 {
		web.WriteValidation(w, errs)
		return
	}
	if err := h.store.Create(r.Context(), v); err != nil {
		h.logger.Errorw("error creating vendor", "user_id", p.ID, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteJSON(w, http.StatusCreated, web.Envelope{Success: true, Data: v})
}
