package family

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/config"
	"github.com/hearthhq/hearth/db"
	"github.com/hearthhq/hearth/db/tables"
	"github.com/hearthhq/hearth/events"
	"github.com/hearthhq/hearth/events/event"
	"github.com/hearthhq/hearth/generator"
	"github.com/hearthhq/hearth/mailing"
	"github.com/hearthhq/hearth/sanitize"
)

const maxIterationCycles = 100

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	// E.164, up to fifteen digits with a mandatory country prefix
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

// Dispatcher dispatches domain events to the registered listeners
type Dispatcher interface {
	Dispatch(event events.Event)
}

func New(store *db.DataStore,
	logger *zap.Logger,
	cfg *config.Configuration,
	mailer *mailing.Mailer,
	dispatcher Dispatcher) *Service {
	return &Service{
		store:      store,
		log:        logger,
		cfg:        cfg,
		mailer:     mailer,
		dispatcher: dispatcher,
	}
}

// Service covers the family membership lifecycle: creating families,
// issuing and consuming invitations, joining by code and leaving again.
type Service struct {
	store      *db.DataStore
	log        *zap.Logger
	cfg        *config.Configuration
	mailer     *mailing.Mailer
	dispatcher Dispatcher
}

// FamilyInfo is the trimmed family representation handed to members
type FamilyInfo struct {
	ID       uuid.UUID
	Name     string
	JoinCode string
}

// Overview combines a family with its active member roster
type Overview struct {
	Family  *FamilyInfo
	Members []*tables.FamilyMemberTable
}

// CreatedInvitation is returned to the inviter, it is the only read
// path that ever carries the raw invitation token.
type CreatedInvitation struct {
	ID         uuid.UUID
	AcceptLink string
	ExpiresAt  time.Time
}

// MembershipResult reports the family a user ended up in after
// accepting an invite or joining by code
type MembershipResult struct {
	FamilyID   uuid.UUID
	FamilyName string
	Role       Role
}

// CreateFamily creates a new family with a fresh join code and makes
// the creator its first parent member.
func (g *Service) CreateFamily(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*FamilyInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	code, err := g.unusedJoinCode(ctx)
	if err != nil {
		return nil, err
	}
	id, err := g.store.CreateFamily(ctx, name, code, userID, string(RoleParent))
	if err != nil {
		g.log.Error("Could not create family", zap.Error(err))
		return nil, err
	}
	g.dispatcher.Dispatch(&event.FamilyCreated{
		FamilyID:   id,
		FamilyName: name,
		CreatedBy:  userID,
	})
	return &FamilyInfo{ID: id, Name: name, JoinCode: code}, nil
}

// Memberships lists every active membership of the given user
func (g *Service) Memberships(
	ctx context.Context,
	userID uuid.UUID,
) ([]*db.MembershipData, error) {
	return g.store.MembershipsByUser(ctx, userID)
}

// FamilyOverview returns the family and its active roster, the caller
// has to be an active member themselves.
func (g *Service) FamilyOverview(
	ctx context.Context,
	userID uuid.UUID,
	familyID uuid.UUID,
) (*Overview, error) {
	if err := g.requireActiveMember(ctx, userID, familyID); err != nil {
		return nil, err
	}
	fam, err := g.store.FamilyByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	members, err := g.store.FamilyMembers(ctx, familyID)
	if err != nil {
		g.log.Error("Could not load family members",
			zap.String("family_id", familyID.String()),
			zap.Error(err))
		return nil, err
	}
	return &Overview{
		Family: &FamilyInfo{
			ID:       fam.ID,
			Name:     fam.Name,
			JoinCode: fam.JoinCode,
		},
		Members: members,
	}, nil
}

// LeaveFamily deactivates the caller's membership. The row is kept so
// a later re-join reactivates it instead of inserting a duplicate.
func (g *Service) LeaveFamily(
	ctx context.Context,
	userID uuid.UUID,
	familyID uuid.UUID,
) error {
	ok, err := g.store.DeactivateMembership(ctx, familyID, userID)
	if err != nil {
		g.log.Error("Could not deactivate membership",
			zap.String("family_id", familyID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return err
	}
	if !ok {
		return ErrNotAMember
	}
	g.dispatcher.Dispatch(&event.MemberLeft{
		FamilyID: familyID,
		UserID:   userID,
	})
	return nil
}

// RotateJoinCode replaces the family join code with a fresh one,
// invalidating the old code immediately. Parents only.
func (g *Service) RotateJoinCode(
	ctx context.Context,
	userID uuid.UUID,
	familyID uuid.UUID,
) (string, error) {
	role, err := g.activeRole(ctx, userID, familyID)
	if err != nil {
		return "", err
	}
	if !role.CanInviteMembers() {
		return "", ErrPermissionDenied
	}
	code, err := g.unusedJoinCode(ctx)
	if err != nil {
		return "", err
	}
	ok, err := g.store.RotateJoinCode(ctx, familyID, code)
	if err != nil {
		g.log.Error("Could not rotate join code",
			zap.String("family_id", familyID.String()),
			zap.Error(err))
		return "", err
	}
	if !ok {
		return "", ErrFamilyNotFound
	}
	g.dispatcher.Dispatch(&event.JoinCodeRotated{
		FamilyID:  familyID,
		RotatedBy: userID,
	})
	return code, nil
}

// CreateInvitation issues a single-use invitation for the given
// contact. At least one of email or phone has to hold a valid value,
// the raw token is only ever surfaced inside the returned accept link.
func (g *Service) CreateInvitation(
	ctx context.Context,
	inviterID uuid.UUID,
	familyID uuid.UUID,
	email *string,
	phone *string,
	role string,
) (*CreatedInvitation, error) {
	inviterRole, err := g.activeRole(ctx, inviterID, familyID)
	if err != nil {
		return nil, err
	}
	if !inviterRole.CanInviteMembers() {
		return nil, ErrPermissionDenied
	}
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	email, phone, err = normalizeContact(email, phone)
	if err != nil {
		return nil, err
	}
	token, err := g.unusedInviteToken(ctx)
	if err != nil {
		return nil, err
	}
	expiry := time.Now().UTC().Add(g.inviteExpiry())
	id, err := g.store.InsertInvitation(
		ctx,
		familyID,
		inviterID,
		email,
		phone,
		string(r),
		token,
		expiry,
	)
	if err != nil {
		g.log.Error("Could not insert invitation",
			zap.String("family_id", familyID.String()),
			zap.Error(err))
		return nil, err
	}
	g.dispatcher.Dispatch(&event.MemberInvited{
		InvitationID: id,
		FamilyID:     familyID,
		InviterID:    inviterID,
		Role:         string(r),
		ExpiresAt:    expiry,
	})
	link := g.acceptLink(token)
	if email != nil {
		g.sendInviteMail(ctx, id, familyID, *email, link, expiry)
	}
	return &CreatedInvitation{
		ID:         id,
		AcceptLink: link,
		ExpiresAt:  expiry,
	}, nil
}

// InvitationsForFamily lists the invitations of a family for an
// active member, tokens are never part of the result set.
func (g *Service) InvitationsForFamily(
	ctx context.Context,
	userID uuid.UUID,
	familyID uuid.UUID,
) ([]*tables.FamilyInvitationTable, error) {
	if err := g.requireActiveMember(ctx, userID, familyID); err != nil {
		return nil, err
	}
	return g.store.InvitationsByFamily(ctx, familyID)
}

// AcceptLinkForInvitation rebuilds the accept link of a pending
// invitation for its inviter, for instance to render it as a QR code.
// Nobody but the original inviter ever gets the link back.
func (g *Service) AcceptLinkForInvitation(
	ctx context.Context,
	inviterID uuid.UUID,
	invitationID uuid.UUID,
) (string, error) {
	inv, err := g.store.InvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrInviteNotFound
		}
		return "", err
	}
	if inv.InviterID != inviterID {
		return "", ErrInviteNotFound
	}
	if InviteStatus(inv.Status) == StatusExpired {
		return "", ErrInviteExpired
	}
	if InviteStatus(inv.Status).Terminal() {
		return "", ErrInviteConsumed
	}
	if inv.ExpiresAt.Before(time.Now().UTC()) {
		g.expireInvitation(ctx, inv)
		return "", ErrInviteExpired
	}
	return g.acceptLink(inv.Token), nil
}

// AcceptInvitation consumes an invitation token and activates the
// membership it carries. The state transition happens in a single
// conditional update, so under concurrent acceptance exactly one
// caller wins and everyone else gets ErrInviteConsumed.
func (g *Service) AcceptInvitation(
	ctx context.Context,
	userID uuid.UUID,
	token string,
) (*MembershipResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteNotFound
	}
	consumed, err := g.store.ConsumeInvitation(ctx, token, userID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, ErrInviteNotFound
		case errors.Is(err, db.ErrExpired):
			g.markExpiredByToken(ctx, token)
			return nil, ErrInviteExpired
		case errors.Is(err, db.ErrConsumed):
			return nil, ErrInviteConsumed
		}
		g.log.Error("Could not consume invitation", zap.Error(err))
		return nil, err
	}
	fam, err := g.store.FamilyByID(ctx, consumed.FamilyID)
	if err != nil {
		g.log.Error("Accepted invitation for unloadable family",
			zap.String("family_id", consumed.FamilyID.String()),
			zap.Error(err))
		return nil, err
	}
	g.dispatcher.Dispatch(&event.InviteAccepted{
		InvitationID: consumed.InvitationID,
		FamilyID:     consumed.FamilyID,
		UserID:       userID,
		Role:         consumed.Role,
	})
	g.dispatcher.Dispatch(&event.MemberJoined{
		FamilyID: consumed.FamilyID,
		UserID:   userID,
		Role:     consumed.Role,
		ByCode:   false,
	})
	return &MembershipResult{
		FamilyID:   consumed.FamilyID,
		FamilyName: fam.Name,
		Role:       Role(consumed.Role),
	}, nil
}

// DeclineInvitation marks a pending invitation as declined. Whoever
// holds the token may decline, the token is spent either way.
func (g *Service) DeclineInvitation(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInviteNotFound
	}
	inv, err := g.store.InvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if inv.ExpiresAt.Before(time.Now().UTC()) && InviteStatus(inv.Status) == StatusPending {
		g.expireInvitation(ctx, inv)
		return ErrInviteExpired
	}
	ok, err := g.store.DeclineInvitation(ctx, token)
	if err != nil {
		g.log.Error("Could not decline invitation", zap.Error(err))
		return err
	}
	if !ok {
		return ErrInviteConsumed
	}
	g.dispatcher.Dispatch(&event.InviteDeclined{
		InvitationID: inv.ID,
		FamilyID:     inv.FamilyID,
	})
	return nil
}

// RevokeInvitation lets the original inviter withdraw a still pending
// invitation
func (g *Service) RevokeInvitation(
	ctx context.Context,
	inviterID uuid.UUID,
	invitationID uuid.UUID,
) error {
	inv, err := g.store.InvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if inv.InviterID != inviterID {
		return ErrInviteNotFound
	}
	ok, err := g.store.RevokeInvitation(ctx, invitationID, inviterID)
	if err != nil {
		g.log.Error("Could not revoke invitation",
			zap.String("invitation_id", invitationID.String()),
			zap.Error(err))
		return err
	}
	if !ok {
		return ErrInviteConsumed
	}
	g.dispatcher.Dispatch(&event.InviteRevoked{
		InvitationID: invitationID,
		FamilyID:     inv.FamilyID,
		RevokedBy:    inviterID,
	})
	return nil
}

// JoinFamilyByCode resolves a shareable join code and activates a
// membership with the configured default role. Joining a family the
// user already belongs to actively yields ErrAlreadyMember, a
// deactivated membership is silently reactivated.
func (g *Service) JoinFamilyByCode(
	ctx context.Context,
	userID uuid.UUID,
	code string,
) (*MembershipResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != generator.JoinCodeLength {
		return nil, ErrInviteNotFound
	}
	role := g.defaultJoinRole()
	fam, err := g.store.JoinFamily(ctx, code, userID, string(role))
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, ErrInviteNotFound
		case errors.Is(err, db.ErrAlreadyExists):
			return nil, ErrAlreadyMember
		}
		g.log.Error("Could not join family by code",
			zap.String("code", sanitize.NoLineBreaks(code)),
			zap.Error(err))
		return nil, err
	}
	g.dispatcher.Dispatch(&event.MemberJoined{
		FamilyID: fam.ID,
		UserID:   userID,
		Role:     string(role),
		ByCode:   true,
	})
	return &MembershipResult{
		FamilyID:   fam.ID,
		FamilyName: fam.Name,
		Role:       role,
	}, nil
}

func (g *Service) requireActiveMember(
	ctx context.Context,
	userID uuid.UUID,
	familyID uuid.UUID,
) error {
	ok, err := g.store.IsActiveMember(ctx, familyID, userID)
	if err != nil {
		g.log.Error("Could not check membership",
			zap.String("family_id", familyID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return err
	}
	if !ok {
		return ErrNotAMember
	}
	return nil
}

func (g *Service) activeRole(
	ctx context.Context,
	userID uuid.UUID,
	familyID uuid.UUID,
) (Role, error) {
	role, err := g.store.ActiveMemberRole(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrNotAMember
		}
		return "", err
	}
	return Role(role), nil
}

func (g *Service) unusedInviteToken(ctx context.Context) (string, error) {
	gen := generator.New()
	timeout := 0
	for {
		token := string(gen.CreateSecureToken())
		exists, err := g.store.InvitationTokenExists(ctx, token)
		if err != nil {
			g.log.Error("Could not check if invite token already exists", zap.Error(err))
			return "", err
		}
		if !exists {
			return token, nil
		}
		timeout++
		if timeout >= maxIterationCycles {
			return "", ErrTokenGenTimeout
		}
	}
}

func (g *Service) unusedJoinCode(ctx context.Context) (string, error) {
	gen := generator.New()
	timeout := 0
	for {
		code := string(gen.CreateJoinCode())
		exists, err := g.store.JoinCodeExists(ctx, code)
		if err != nil {
			g.log.Error("Could not check if join code already exists", zap.Error(err))
			return "", err
		}
		if !exists {
			return code, nil
		}
		timeout++
		if timeout >= maxIterationCycles {
			return "", ErrTokenGenTimeout
		}
	}
}

func (g *Service) inviteExpiry() time.Duration {
	if g.cfg.Behaviour.InviteExpiry > 0 {
		return g.cfg.Behaviour.InviteExpiry
	}
	return 7 * 24 * time.Hour
}

func (g *Service) defaultJoinRole() Role {
	r, err := ParseRole(g.cfg.Behaviour.DefaultJoinRole)
	if err != nil {
		return RoleOther
	}
	if g.cfg.Behaviour.DefaultJoinRole == "" {
		return RoleOther
	}
	return r
}

func (g *Service) acceptLink(token string) string {
	return fmt.Sprintf("%s/accept-invite?token=%s",
		strings.TrimSuffix(g.cfg.Behaviour.Site, "/"), token)
}

func (g *Service) sendInviteMail(
	ctx context.Context,
	invitationID uuid.UUID,
	familyID uuid.UUID,
	email string,
	link string,
	expiry time.Time,
) {
	fam, err := g.store.FamilyByID(ctx, familyID)
	if err != nil {
		g.log.Error("Could not load family for invite mail", zap.Error(err))
		return
	}
	err = g.mailer.SendInviteMail(email, fam.Name, link, expiry)
	if err != nil {
		g.log.Error("Invite mail could not be sent",
			sanitize.UserInputString("email", email),
			zap.Error(err))
		return
	}
	if err := g.store.SetInviteSent(ctx, invitationID); err != nil {
		g.log.Warn("Could not flag invitation as sent",
			zap.String("invitation_id", invitationID.String()),
			zap.Error(err))
	}
	g.dispatcher.Dispatch(&event.EmailInviteSent{
		InvitationID: invitationID,
		FamilyID:     familyID,
		Email:        email,
		Sent:         time.Now().UTC(),
	})
}

func (g *Service) expireInvitation(ctx context.Context, inv *tables.FamilyInvitationTable) {
	ok, err := g.store.MarkInvitationExpired(ctx, inv.Token)
	if err != nil {
		g.log.Error("Could not mark invitation expired",
			zap.String("invitation_id", inv.ID.String()),
			zap.Error(err))
		return
	}
	if ok {
		g.dispatcher.Dispatch(&event.InviteExpired{
			InvitationID: inv.ID,
			FamilyID:     inv.FamilyID,
		})
	}
}

func (g *Service) markExpiredByToken(ctx context.Context, token string) {
	inv, err := g.store.InvitationByToken(ctx, token)
	if err != nil {
		return
	}
	g.expireInvitation(ctx, inv)
}

func normalizeContact(email *string, phone *string) (*string, *string, error) {
	var e, p *string
	if email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*email))
		if trimmed != "" {
			if !emailPattern.MatchString(trimmed) {
				return nil, nil, ErrInvalidContact
			}
			e = &trimmed
		}
	}
	if phone != nil {
		trimmed := strings.ReplaceAll(strings.TrimSpace(*phone), " ", "")
		if trimmed != "" {
			if !phonePattern.MatchString(trimmed) {
				return nil, nil, ErrInvalidContact
			}
			p = &trimmed
		}
	}
	if e == nil && p == nil {
		return nil, nil, ErrInvalidContact
	}
	return e, p, nil
}
