package family

import "fmt"

// Role is the closed set of membership roles. Keep every switch over
// it exhaustive so a new role cannot sneak in without updating all
// call sites.
type Role string

const (
	RoleParent      Role = "parent"
	RoleChild       Role = "child"
	RoleGrandparent Role = "grandparent"
	RoleCaretaker   Role = "caretaker"
	RoleOther       Role = "other"
)

// ParseRole maps user supplied input onto the closed role set,
// an empty string falls back to the parent default.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParent, RoleChild, RoleGrandparent, RoleCaretaker, RoleOther:
		return Role(s), nil
	case "":
		return RoleParent, nil
	default:
		return "", fmt.Errorf("unknown role %q: %w", s, ErrInvalidRole)
	}
}

// CanInviteMembers reports whether a member with this role may issue
// invitations and rotate the family join code.
func (r Role) CanInviteMembers() bool {
	switch r {
	case RoleParent:
		return true
	case RoleChild, RoleGrandparent, RoleCaretaker, RoleOther:
		return false
	}
	return false
}

// InviteStatus is the closed set of invitation states
type InviteStatus string

const (
	StatusPending  InviteStatus = "pending"
	StatusAccepted InviteStatus = "accepted"
	StatusDeclined InviteStatus = "declined"
	StatusExpired  InviteStatus = "expired"
)

// Terminal reports whether the status permits no further transition.
// The lifecycle is monotonic: pending is the only non-terminal state.
func (s InviteStatus) Terminal() bool {
	switch s {
	case StatusPending:
		return false
	case StatusAccepted, StatusDeclined, StatusExpired:
		return true
	}
	return true
}
