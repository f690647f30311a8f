// Package viewing tracks whose ledger data a client session is currently
// looking at.
//
// The state is advisory: it drives which affordances a client shows and
// which viewUserId it sends. The server-side check in package access is the
// only enforcement point.
package viewing

import "github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"

// Identity returns the signed-in principal's own id, or "" while it has not
// been loaded yet.
type Identity func() string

// Manager owns the viewing target for one client session. Create it when the
// session starts and drop it when the session ends; it is not persisted and
// not safe for use by more than one goroutine.
type Manager struct {
	self   Identity
	target string
}

// New returns a Manager in the Self state.
func New(self Identity) *Manager {
	if self == nil {
		self = func() string { return "" }
	}
	return &Manager{self: self}
}

// SetTarget switches to viewing id. Selecting the principal's own id returns
// to Self. No permission check happens here.
func (m *Manager) SetTarget(id string) {
	if id == m.self() {
		m.target = ""
		return
	}
	m.target = id
}

// Reset returns to Self unconditionally.
func (m *Manager) Reset() {
	m.target = ""
}

// TargetUserID is the selected target, "" in the Self state.
func (m *Manager) TargetUserID() string {
	return m.target
}

// IsViewingOther is true when a target is set and either differs from the
// principal's id or that id is not known yet. The unknown-identity case
// leans towards the restricted view so the UI does not flicker while the
// identity loads.
func (m *Manager) IsViewingOther() bool {
	if m.target == "" {
		return false
	}
	own := m.self()
	return own == "" || m.target != own
}

// ViewUserID is the value listing requests send as viewUserId: the target
// when one is set, otherwise the principal's own id ("" when unknown).
func (m *Manager) ViewUserID() string {
	if m.target != "" {
		return m.target
	}
	return m.self()
}

// CanMutate gates create, edit, delete and settings affordances.
func (m *Manager) CanMutate() bool {
	return !m.IsViewingOther()
}

// IsCurrent reports whether a response fetched for viewUserID still matches
// the active target. Consumers may drop responses for which it is false.
func (m *Manager) IsCurrent(viewUserID string) bool {
	return viewUserID == m.ViewUserID()
}

// ShowTargetSelector reports whether the target selector should be rendered
// for role at all.
func ShowTargetSelector(role access.Role) bool {
	return role == access.RoleAdmin
}
