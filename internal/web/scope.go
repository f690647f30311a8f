package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
)

// ViewUserParam is the optional query parameter naming whose data to read.
const ViewUserParam = "viewUserId"

// deniedMessage is the same for every denial so responses do not reveal
// whether the requested id exists.
const deniedMessage = "access denied"

// Denied writes the uniform 403 body.
func Denied(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, deniedMessage)
}

func requestedUser(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get(ViewUserParam))
}

// ReadTarget resolves the owner id a per-resource read must be scoped to.
// On false the response has been written and the handler must stop.
func ReadTarget(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	id, err := access.ResolveTargetUser(p.Role, p.ID, requestedUser(r))
	if err != nil {
		writeAccessError(w, err)
		return "", false
	}
	return id, true
}

// ReadOwners resolves the owner set for bulk endpoints. An unrestricted
// (empty) set must be passed through to the store as "no owner filter".
func ReadOwners(w http.ResponseWriter, r *http.Request) (access.OwnerSet, bool) {
	p, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	owners, err := access.ResolveAccessibleIDs(p.Role, p.ID, requestedUser(r))
	if err != nil {
		writeAccessError(w, err)
		return nil, false
	}
	return owners, true
}

// WriteTarget resolves the owner for a mutation. Viewing is read-only, so a
// viewUserId naming anyone but the caller is denied even for ADMIN.
func WriteTarget(w http.ResponseWriter, r *http.Request) (session.Principal, bool) {
	p, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return session.Principal{}, false
	}
	id, err := access.ResolveTargetUser(p.Role, p.ID, requestedUser(r))
	if err == nil && id != p.ID {
		err = access.ErrAccessDenied
	}
	if err != nil {
		writeAccessError(w, err)
		return session.Principal{}, false
	}
	return p, true
}

func writeAccessError(w http.ResponseWriter, err error) {
	if errors.Is(err, access.ErrAccessDenied) {
		Denied(w)
		return
	}
	WriteInternal(w)
}
