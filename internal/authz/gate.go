// Package authz centralizes the permission rules for every mutating
// operation.  Handlers call these functions after loading the resource and
// before applying any side effect; a false result means the request is
// denied in full.  The rules are pure so the whole matrix is unit tested
// without a database.
package authz

import "github.com/ateliermori/commission-api/internal/model"

// Role mirrors the JWT "role" claim.  ADMIN is derived by comparing the
// account email to the single configured admin address; it is never a
// database column.
type Role string

const (
    RoleClient Role = "CLIENT"
    RoleAdmin  Role = "ADMIN"
)

// Actor is the authenticated identity performing a request.  A zero Actor
// (ID == 0) represents an anonymous caller and is denied everything.
type Actor struct {
    ID   uint64
    Role Role
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Authenticated reports whether the actor is a signed-in user.
func (a Actor) Authenticated() bool { return a.ID != 0 }

// CanReadCommission allows the commission owner and the admin.  Callers
// should surface a denial as not-found so an unauthorized actor cannot
// probe whether the record exists.
func CanReadCommission(a Actor, ownerID uint64) bool {
    return a.Authenticated() && (a.ID == ownerID || a.IsAdmin())
}

// CanEditCommissionContent allows content-field edits by the owner only.
// The Pending-state requirement is checked separately so callers can
// distinguish a forbidden edit from an invalid-state edit.
func CanEditCommissionContent(a Actor, ownerID uint64) bool {
    return a.Authenticated() && a.ID == ownerID
}

// CanTransitionStatus decides who may move a commission between statuses.
// The admin may set any status from any status; no ordering graph is
// enforced on purpose.  The owner gets exactly one transition: to
// Cancelled, and only while the commission is Pending or In Progress.
func CanTransitionStatus(a Actor, ownerID uint64, from, to model.CommissionStatus) bool {
    if !a.Authenticated() {
        return false
    }
    if a.IsAdmin() {
        return true
    }
    if a.ID != ownerID {
        return false
    }
    return to == model.StatusCancelled &&
        (from == model.StatusPending || from == model.StatusInProgress)
}

// CanPostMessage allows the commission owner and the admin to append to
// the conversation.
func CanPostMessage(a Actor, ownerID uint64) bool {
    return CanReadCommission(a, ownerID)
}

// CanMarkMessageRead allows a conversation participant to mark a message
// read, but never the message's own sender.
func CanMarkMessageRead(a Actor, ownerID, senderID uint64) bool {
    return CanReadCommission(a, ownerID) && a.ID != senderID
}

// CanAccessProfile allows a user to read or mutate only their own
// measurement profile and preferences.
func CanAccessProfile(a Actor, ownerID uint64) bool {
    return a.Authenticated() && a.ID == ownerID
}
