// Package access decides whether a principal may read another principal's
// ledger data and which owner id a query must be scoped to.
//
// Every function here is pure: no I/O and no shared state, so they are safe
// to call from any number of concurrent requests.
package access

import "errors"

// ErrAccessDenied is the only failure the evaluator produces. It carries no
// detail so callers cannot tell a missing target from a forbidden one.
var ErrAccessDenied = errors.New("access denied")

// OwnerSet is the result of bulk resolution.
//
// An EMPTY set means "no owner restriction", not "match nothing". Data layers
// receiving an OwnerSet must check Unrestricted before building a filter.
type OwnerSet []string

// Unrestricted reports whether no owner filter should be applied.
func (s OwnerSet) Unrestricted() bool { return len(s) == 0 }

// Contains reports whether id is explicitly listed.
func (s OwnerSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// CanView reports whether a caller may read targetID's data. ADMIN may read
// anyone, USER only themself, anything else nobody.
func CanView(role Role, callerID, targetID string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
		return callerID != "" && callerID == targetID
	default:
		return false
	}
}

// ResolveTargetUser returns the single owner id a per-resource endpoint must
// scope its reads and writes to. An empty requestedID means the caller's own
// data. Unrecognized roles are denied even for self requests.
func ResolveTargetUser(role Role, callerID, requestedID string) (string, error) {
	if !role.Valid() || callerID == "" {
		return "", ErrAccessDenied
	}
	if requestedID == "" {
		return callerID, nil
	}
	if !CanView(role, callerID, requestedID) {
		return "", ErrAccessDenied
	}
	return requestedID, nil
}

// ResolveAccessibleIDs resolves owners for bulk listing endpoints.
//
// ADMIN without a requested id gets an empty (unrestricted) set. A USER
// asking for someone else is denied, matching ResolveTargetUser.
func ResolveAccessibleIDs(role Role, callerID, requestedID string) (OwnerSet, error) {
	switch role {
	case RoleAdmin:
		if callerID == "" {
			return nil, ErrAccessDenied
		}
		if requestedID != "" {
			return OwnerSet{requestedID}, nil
		}
		return OwnerSet{}, nil
	case RoleUser:
		if callerID == "" || (requestedID != "" && requestedID != callerID) {
			return nil, ErrAccessDenied
		}
		return OwnerSet{callerID}, nil
	default:
		return nil, ErrAccessDenied
	}
}
