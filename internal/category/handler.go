package category

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/category/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/web"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// Handler contains dependencies for handling category endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type createRequest struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Color     string  `json:"color"`
	SortOrder int     `json:"sortOrder"`
	IsDefault bool    `json:"isDefault"`
	ParentID  *string `json:"parentId"`
}

// List handles GET /api/categories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := web.ReadTarget(w, r)
	if !ok {
		return
	}
	var kind entity.Kind
	if s := r.URL.Query().Get("type"); s != "" {
		kind = entity.Kind(strings.ToUpper(s))
		if !kind.Valid() {
			web.WriteValidation(w, []web.FieldError{{Field: "type", Message: "must be INCOME or EXPENSE"}})
			return
		}
	}
	cats, err := h.svc.List(r.Context(), owner, kind)
	if err != nil {
		h.logger.Errorw("error fetching categories", "owner", owner, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteData(w, cats)
}

// Subcategories handles GET /api/categories/{id}/subcategories.
func (h *Handler) Subcategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := web.ReadTarget(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !utilities.IsRecordID(id) {
		web.WriteError(w, http.StatusNotFound, "Category not found")
		return
	}
	subs, err := h.svc.Subcategories(r.Context(), owner, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.WriteError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Errorw("error fetching subcategories", "category_id", id, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteData(w, subs)
}

// Create handles POST /api/categories.
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
	c, err := h.svc.Create(r.Context(), p.ID, in)
	switch {
	case err == nil:
		web.WriteJSON(w, http.StatusCreated, web.Envelope{Success: true, Data: c})
	case errors.Is(err, ErrParentMissing):
		web.WriteValidation(w, []web.FieldError{{Field: "parentId", Message: "parent category not found"}})
	default:
		h.logger.Errorw("error creating category", "user_id", p.ID, "err", err)
		web.WriteInternal(w)
	}
}

func (req createRequest) validate() (Input, []web.FieldError) {
	var errs []web.FieldError
	in := Input{
		Name:      strings.TrimSpace(req.Name),
		Type:      entity.Kind(strings.ToUpper(strings.TrimSpace(req.Type))),
		Color:     strings.TrimSpace(req.Color),
		SortOrder: req.SortOrder,
		IsDefault: req.IsDefault,
	}
	if in.Name == "" {
		errs = append(errs, web.FieldError{Field: "name", Message: "is required"})
	}
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		pid := strings.TrimSpace(*req.ParentID)
		if !utilities.IsRecordID(pid) {
			errs = append(errs, web.FieldError{Field: "parentId", Message: "must be a valid id"})
		}
		in.ParentID = &pid
	} else if !in.Type.Valid() {
		errs = append(errs, web.FieldError{Field: "type", Message: "must be INCOME or EXPENSE"})
	}
	if in.Color != "" && !isHexColor(in.Color) {
		errs = append(errs, web.FieldError{Field: "color", Message: "must be a #RRGGBB color"})
	}
	return in, errs
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
