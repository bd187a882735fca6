// Package access is the single authorization evaluator for tasks and their
// documents. Every handler and service consults these functions instead of
// re-deriving role/ownership rules locally.
package access

import "github.com/taskhub/taskhub-api/internal/models"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uint64
	Role models.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanView allows admins, the creator, and the assignee.
func CanView(actor Actor, task *models.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID == task.CreatedByID || actor.ID == task.AssignedToID
}

// CanUpdate allows admins and the creator. Being the assignee alone does not
// grant update rights.
func CanUpdate(actor Actor, task *models.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID == task.CreatedByID
}

// CanDelete follows the same rule as update.
func CanDelete(actor Actor, task *models.Task) bool {
	return CanUpdate(actor, task)
}

// CanDownload follows the same rule as view: the document is visible to
// whoever can see its owning task.
func CanDownload(actor Actor, task *models.Task) bool {
	return CanView(actor, task)
}

// ListScopeUserID returns the user id that task listings must be restricted
// to, or nil when the actor may see the unfiltered set. The restriction is
// "created by OR assigned to" and is conjoined with any caller-supplied
// filters by the repository.
func ListScopeUserID(actor Actor) *uint64 {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.ID
	return &id
}
