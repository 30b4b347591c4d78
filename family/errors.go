package family

import "errors"

var (
	// ErrInvalidName indicates an empty or unusable family name
	ErrInvalidName = errors.New("invalid family name")
	// ErrInvalidRole indicates a role outside the closed role set
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidContact indicates an invitation with neither a valid
	// email address nor a valid phone number
	ErrInvalidContact = errors.New("invitation requires a valid email or phone contact")
	// ErrNotAMember indicates the caller holds no active membership
	// in the addressed family
	ErrNotAMember = errors.New("not an active member of this family")
	// ErrPermissionDenied indicates the caller's role does not allow
	// the requested operation
	ErrPermissionDenied = errors.New("role does not permit this operation")
	// ErrInviteNotFound covers unknown tokens, unknown join codes and
	// unknown invitation ids alike so a caller cannot probe for them
	ErrInviteNotFound = errors.New("invitation not found")
	// ErrInviteConsumed indicates the invitation already reached a
	// terminal state
	ErrInviteConsumed = errors.New("invitation already consumed")
	// ErrInviteExpired indicates the invitation passed its expiry
	// before it could be accepted
	ErrInviteExpired = errors.New("invitation expired")
	// ErrAlreadyMember indicates an already active membership in the
	// target family
	ErrAlreadyMember = errors.New("already an active member of this family")
	// ErrFamilyNotFound indicates the addressed family does not exist
	ErrFamilyNotFound = errors.New("family not found")
	// ErrTokenGenTimeout indicates the secure generator could not
	// produce an unused token within bounds
	ErrTokenGenTimeout = errors.New("could not generate an unused token within bounds")
)
