package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/hearthhq/hearth/events"
)

const (
	FamilyCreatedEvent   events.EventName = "family_created"
	JoinCodeRotatedEvent events.EventName = "family_join_code_rotated"

	MemberInvitedEvent   events.EventName = "family_member_invited"
	InviteAcceptedEvent  events.EventName = "family_invite_accepted"
	InviteDeclinedEvent  events.EventName = "family_invite_declined"
	InviteRevokedEvent   events.EventName = "family_invite_revoked"
	InviteExpiredEvent   events.EventName = "family_invite_expired"
	EmailInviteSentEvent events.EventName = "email_invite_sent"

	MemberJoinedEvent events.EventName = "family_member_joined"
	MemberLeftEvent   events.EventName = "family_member_left"

	PromoRedeemedEvent    events.EventName = "promo_redeemed"
	PromoCodeCreatedEvent events.EventName = "promo_code_created"
	PromoCodeDeletedEvent events.EventName = "promo_code_deleted"
)

type FamilyCreated struct {
	FamilyID   uuid.UUID
	FamilyName string
	CreatedBy  uuid.UUID
}

func (*FamilyCreated) Name() events.EventName { return FamilyCreatedEvent }

type JoinCodeRotated struct {
	FamilyID  uuid.UUID
	RotatedBy uuid.UUID
}

func (*JoinCodeRotated) Name() events.EventName { return JoinCodeRotatedEvent }

type MemberInvited struct {
	InvitationID uuid.UUID
	FamilyID     uuid.UUID
	InviterID    uuid.UUID
	Role         string
	ExpiresAt    time.Time
}

func (*MemberInvited) Name() events.EventName { return MemberInvitedEvent }

type InviteAccepted struct {
	InvitationID uuid.UUID
	FamilyID     uuid.UUID
	UserID       uuid.UUID
	Role         string
}

func (*InviteAccepted) Name() events.EventName { return InviteAcceptedEvent }

type InviteDeclined struct {
	InvitationID uuid.UUID
	FamilyID     uuid.UUID
}

func (*InviteDeclined) Name() events.EventName { return InviteDeclinedEvent }

type InviteRevoked struct {
	InvitationID uuid.UUID
	FamilyID     uuid.UUID
	RevokedBy    uuid.UUID
}

func (*InviteRevoked) Name() events.EventName { return InviteRevokedEvent }

type InviteExpired struct {
	InvitationID uuid.UUID
	FamilyID     uuid.UUID
}

func (*InviteExpired) Name() events.EventName { return InviteExpiredEvent }

type EmailInviteSent struct {
	InvitationID uuid.UUID
	FamilyID     uuid.UUID
	Email        string
	Sent         time.Time
}

func (*EmailInviteSent) Name() events.EventName { return EmailInviteSentEvent }

type MemberJoined struct {
	FamilyID uuid.UUID
	UserID   uuid.UUID
	Role     string
	ByCode   bool
}

func (*MemberJoined) Name() events.EventName { return MemberJoinedEvent }

type MemberLeft struct {
	FamilyID uuid.UUID
	UserID   uuid.UUID
}

func (*MemberLeft) Name() events.EventName { return MemberLeftEvent }

type PromoRedeemed struct {
	Code   string
	UserID uuid.UUID
}

func (*PromoRedeemed) Name() events.EventName { return PromoRedeemedEvent }

type PromoCodeCreated struct {
	Code    string
	MaxUses int
}

func (*PromoCodeCreated) Name() events.EventName { return PromoCodeCreatedEvent }

type PromoCodeDeleted struct {
	Code string
}

func (*PromoCodeDeleted) Name() events.EventName { return PromoCodeDeletedEvent }
