package permissions

import "github.com/google/uuid"

// Flags are the per-author capability booleans layered under the coarse role
// check on content mutation. A row exists exactly while the owning account
// has the author role.
type Flags struct {
	UserID    uuid.UUID `json:"userId"`
	CanCreate bool      `json:"create"`
	CanUpdate bool      `json:"update"`
	CanDelete bool      `json:"delete"`
}

// Content-mutation actions gated by Flags.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Allows reports whether the flags permit the action. Unknown actions are
// denied.
func (f Flags) Allows(action string) bool {
	switch action {
	case ActionCreate:
		return f.CanCreate
	case ActionUpdate:
		return f.CanUpdate
	case ActionDelete:
		return f.CanDelete
	default:
		return false
	}
}
