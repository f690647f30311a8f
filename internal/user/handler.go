package user

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/viewing"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/web"
)

// Handler exposes HTTP endpoints for household members.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// MeResponse tells a client who it is and whether to offer the target
// selector.
type MeResponse struct {
	session.Principal
	CanSelectTarget bool `json:"canSelectTarget"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := session.FromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	web.WriteData(w, MeResponse{Principal: p, CanSelectTarget: viewing.ShowTargetSelector(p.Role)})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListMembers(r.Context())
	if err != nil {
		h.logger.Errorw("error fetching users", "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteData(w, members)
}

func (h *Handler) UpdateLastLogin(w http.ResponseWriter, r *http.Request) {
	p, ok := session.FromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.svc.TouchLastLogin(r.Context(), p.ID); err != nil {
		h.logger.Errorw("error updating last login", "user_id", p.ID, "err", err)
		web.WriteInternal(w)
		return
	}
	web.WriteJSON(w, http.StatusOK, web.Envelope{Success: true, Message: "last login updated"})
}
