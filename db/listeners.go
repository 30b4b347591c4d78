package db

import (
	"github.com/hearthhq/hearth/db/tables"
	"github.com/hearthhq/hearth/events"
	"github.com/hearthhq/hearth/events/event"
	"go.uber.org/zap"
)

// Auditor is a way to write audit log events into a persistent store
type Auditor interface {
	addToAuditLog(event string, payload tables.MapStructure) error
}

// BootstrapListeners registers all the event listeners from this package
func BootstrapListeners(store Auditor, log *zap.Logger) []events.EventListener {
	return []events.EventListener{
		&familyCreatedListener{log: log, store: store},
		&joinCodeRotatedListener{log: log, store: store},
		&memberInvitedListener{log: log, store: store},
		&inviteAcceptedListener{log: log, store: store},
		&inviteDeclinedListener{log: log, store: store},
		&inviteRevokedListener{log: log, store: store},
		&inviteExpiredListener{log: log, store: store},
		&emailInviteSentListener{log: log, store: store},
		&memberJoinedListener{log: log, store: store},
		&memberLeftListener{log: log, store: store},
		&promoRedeemedListener{log: log, store: store},
		&promoCodeCreatedListener{log: log, store: store},
		&promoCodeDeletedListener{log: log, store: store},
	}
}

type familyCreatedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*familyCreatedListener) ForEvent() events.EventName {
	return event.FamilyCreatedEvent
}

func (l *familyCreatedListener) Handle(ev events.Event) error {
	e := ev.(*event.FamilyCreated)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"family_id":  e.FamilyID.String(),
		"name":       e.FamilyName,
		"created_by": e.CreatedBy.String(),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type joinCodeRotatedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*joinCodeRotatedListener) ForEvent() events.EventName {
	return event.JoinCodeRotatedEvent
}

func (l *joinCodeRotatedListener) Handle(ev events.Event) error {
	e := ev.(*event.JoinCodeRotated)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"family_id":  e.FamilyID.String(),
		"rotated_by": e.RotatedBy.String(),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type memberInvitedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*memberInvitedListener) ForEvent() events.EventName {
	return event.MemberInvitedEvent
}

func (l *memberInvitedListener) Handle(ev events.Event) error {
	e := ev.(*event.MemberInvited)
	// the raw token never reaches the audit log, only the invitation id
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"invitation_id": e.InvitationID.String(),
		"family_id":     e.FamilyID.String(),
		"inviter_id":    e.InviterID.String(),
		"role":          e.Role,
		"expires_at":    e.ExpiresAt.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type inviteAcceptedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*inviteAcceptedListener) ForEvent() events.EventName {
	return event.InviteAcceptedEvent
}

func (l *inviteAcceptedListener) Handle(ev events.Event) error {
	e := ev.(*event.InviteAccepted)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"invitation_id": e.InvitationID.String(),
		"family_id":     e.FamilyID.String(),
		"user_id":       e.UserID.String(),
		"role":          e.Role,
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type inviteDeclinedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*inviteDeclinedListener) ForEvent() events.EventName {
	return event.InviteDeclinedEvent
}

func (l *inviteDeclinedListener) Handle(ev events.Event) error {
	e := ev.(*event.InviteDeclined)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"invitation_id": e.InvitationID.String(),
		"family_id":     e.FamilyID.String(),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type inviteRevokedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*inviteRevokedListener) ForEvent() events.EventName {
	return event.InviteRevokedEvent
}

func (l *inviteRevokedListener) Handle(ev events.Event) error {
	e := ev.(*event.InviteRevoked)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"invitation_id": e.InvitationID.String(),
		"family_id":     e.FamilyID.String(),
		"revoked_by":    e.RevokedBy.String(),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type inviteExpiredListener struct {
	store Auditor
	log   *zap.Logger
}

func (*inviteExpiredListener) ForEvent() events.EventName {
	return event.InviteExpiredEvent
}

func (l *inviteExpiredListener) Handle(ev events.Event) error {
	e := ev.(*event.InviteExpired)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"invitation_id": e.InvitationID.String(),
		"family_id":     e.FamilyID.String(),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type emailInviteSentListener struct {
	store Auditor
	log   *zap.Logger
}

func (*emailInviteSentListener) ForEvent() events.EventName {
	return event.EmailInviteSentEvent
}

func (l *emailInviteSentListener) Handle(ev events.Event) error {
	e := ev.(*event.EmailInviteSent)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"invitation_id": e.InvitationID.String(),
		"email":         e.Email,
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type memberJoinedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*memberJoinedListener) ForEvent() events.EventName {
	return event.MemberJoinedEvent
}

func (l *memberJoinedListener) Handle(ev events.Event) error {
	e := ev.(*event.MemberJoined)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"family_id": e.FamilyID.String(),
		"user_id":   e.UserID.String(),
		"role":      e.Role,
		"by_code":   toString(e.ByCode),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

func toString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

type memberLeftListener struct {
	store Auditor
	log   *zap.Logger
}

func (*memberLeftListener) ForEvent() events.EventName {
	return event.MemberLeftEvent
}

func (l *memberLeftListener) Handle(ev events.Event) error {
	e := ev.(*event.MemberLeft)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"family_id": e.FamilyID.String(),
		"user_id":   e.UserID.String(),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type promoRedeemedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*promoRedeemedListener) ForEvent() events.EventName {
	return event.PromoRedeemedEvent
}

func (l *promoRedeemedListener) Handle(ev events.Event) error {
	e := ev.(*event.PromoRedeemed)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"code":    e.Code,
		"user_id": e.UserID.String(),
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type promoCodeCreatedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*promoCodeCreatedListener) ForEvent() events.EventName {
	return event.PromoCodeCreatedEvent
}

func (l *promoCodeCreatedListener) Handle(ev events.Event) error {
	e := ev.(*event.PromoCodeCreated)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"code":     e.Code,
		"max_uses": e.MaxUses,
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}

type promoCodeDeletedListener struct {
	store Auditor
	log   *zap.Logger
}

func (*promoCodeDeletedListener) ForEvent() events.EventName {
	return event.PromoCodeDeletedEvent
}

func (l *promoCodeDeletedListener) Handle(ev events.Event) error {
	e := ev.(*event.PromoCodeDeleted)
	err := l.store.addToAuditLog(string(l.ForEvent()), map[string]interface{}{
		"code": e.Code,
	})
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err))
	}
	return nil
}
