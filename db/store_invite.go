package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hearthhq/hearth/db/tables"
)

const (
	inviteStatusPending  = "pending"
	inviteStatusAccepted = "accepted"
	inviteStatusDeclined = "declined"
	inviteStatusExpired  = "expired"
)

// InsertInvitation writes a fresh pending invitation row
func (d *DataStore) InsertInvitation(
	ctx context.Context,
	familyID uuid.UUID,
	inviterID uuid.UUID,
	email *string,
	phone *string,
	role string,
	token string,
	expires time.Time,
) (uuid.UUID, error) {
	id := uuid.New()
	ins := sq.Insert("family_invitations").
		Columns(
			"id",
			"family_id",
			"inviter_id",
			"invitee_email",
			"invitee_phone",
			"role",
			"status",
			"token",
			"expires_at",
			"created_at",
		).
		Values(id, familyID, inviterID, email, phone, role, inviteStatusPending, token, expires, time.Now().UTC())
	_, err := d.insertStatement(ctx, ins, nil)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, ErrAlreadyExists
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (d *DataStore) InvitationTokenExists(ctx context.Context, token string) (bool, error) {
	return d.exists(ctx, "family_invitations", sq.Eq{"token": token})
}

func (d *DataStore) InvitationByToken(
	ctx context.Context,
	token string,
) (*tables.FamilyInvitationTable, error) {
	var entity tables.FamilyInvitationTable
	q := sq.Select("*").From("family_invitations").Where(sq.Eq{"token": token})
	err := d.getStatement(ctx, &entity, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (d *DataStore) InvitationByID(
	ctx context.Context,
	id uuid.UUID,
) (*tables.FamilyInvitationTable, error) {
	var entity tables.FamilyInvitationTable
	q := sq.Select("*").From("family_invitations").Where(sq.Eq{"id": id})
	err := d.getStatement(ctx, &entity, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// ConsumeInvitation is the atomic accept: one transaction carrying a
// single conditional update on the invitation plus the membership
// upsert. Exactly one concurrent caller can see RowsAffected == 1, all
// others get ErrConsumed (or ErrExpired when the expiry has passed).
func (d *DataStore) ConsumeInvitation(
	ctx context.Context,
	token string,
	userID uuid.UUID,
) (*ConsumedInvitation, error) {
	inv, err := d.InvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	upd := sq.Update("family_invitations").
		Set("status", inviteStatusAccepted).
		Set("accepted_at", now).
		Where(
			"token = ? AND status = ? AND expires_at > ?",
			token,
			inviteStatusPending,
			now,
		)
	rs, err := d.updateStatement(ctx, upd, tx)
	if err != nil {
		d.rollback(tx)
		return nil, err
	}
	affected, err := rs.RowsAffected()
	if err != nil {
		d.rollback(tx)
		return nil, err
	}
	if affected == 0 {
		// we lost: either a concurrent accept won, the invitation was
		// already terminal, or expiry has passed in the meantime
		d.rollback(tx)
		current, rerr := d.InvitationByToken(ctx, token)
		if rerr != nil {
			return nil, rerr
		}
		if current.Status == inviteStatusExpired ||
			(current.Status == inviteStatusPending && !current.ExpiresAt.After(now)) {
			return nil, ErrExpired
		}
		return nil, ErrConsumed
	}
	err = d.upsertMembership(ctx, tx, inv.FamilyID, userID, &inv.InviterID, inv.Role)
	if err != nil && !errors.Is(err, ErrAlreadyExists) {
		// an already active membership does not void the acceptance,
		// everything else does
		d.rollback(tx)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &ConsumedInvitation{
		InvitationID: inv.ID,
		FamilyID:     inv.FamilyID,
		Role:         inv.Role,
	}, nil
}

// MarkInvitationExpired lazily flips a stale pending invitation to
// expired. Conditional, so it never touches terminal states.
func (d *DataStore) MarkInvitationExpired(ctx context.Context, token string) (bool, error) {
	q := sq.Update("family_invitations").
		Set("status", inviteStatusExpired).
		Where(
			"token = ? AND status = ? AND expires_at <= ?",
			token,
			inviteStatusPending,
			time.Now().UTC(),
		)
	rs, err := d.updateStatement(ctx, q, nil)
	if err != nil {
		return false, err
	}
	affected, err := rs.RowsAffected()
	return affected > 0, err
}

// DeclineInvitation moves a pending invitation to declined
func (d *DataStore) DeclineInvitation(ctx context.Context, token string) (bool, error) {
	q := sq.Update("family_invitations").
		Set("status", inviteStatusDeclined).
		Where("token = ? AND status = ?", token, inviteStatusPending)
	rs, err := d.updateStatement(ctx, q, nil)
	if err != nil {
		return false, err
	}
	affected, err := rs.RowsAffected()
	return affected > 0, err
}

// RevokeInvitation is the inviter-side decline, it only ever touches
// the inviters own pending invitations
func (d *DataStore) RevokeInvitation(
	ctx context.Context,
	id uuid.UUID,
	inviterID uuid.UUID,
) (bool, error) {
	q := sq.Update("family_invitations").
		Set("status", inviteStatusDeclined).
		Where("id = ? AND inviter_id = ? AND status = ?", id, inviterID, inviteStatusPending)
	rs, err := d.updateStatement(ctx, q, nil)
	if err != nil {
		return false, err
	}
	affected, err := rs.RowsAffected()
	return affected > 0, err
}

func (d *DataStore) SetInviteSent(ctx context.Context, id uuid.UUID) error {
	q := sq.Update("family_invitations").
		Set("sent_at", time.Now().UTC()).
		Where("id = ?", id)
	_, err := d.updateStatement(ctx, q, nil)
	return err
}

// InvitationsByFamily lists a familys invitations without ever
// selecting the token column
func (d *DataStore) InvitationsByFamily(
	ctx context.Context,
	familyID uuid.UUID,
) ([]*tables.FamilyInvitationTable, error) {
	var entities []*tables.FamilyInvitationTable
	q := sq.Select(
		"id",
		"family_id",
		"inviter_id",
		"invitee_email",
		"invitee_phone",
		"role",
		"status",
		"expires_at",
		"accepted_at",
		"created_at",
		"sent_at",
	).
		From("family_invitations").
		Where(sq.Eq{"family_id": familyID}).
		OrderBy("created_at DESC")
	err := d.selectStatement(ctx, &entities, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*tables.FamilyInvitationTable{}, nil
		}
		return nil, err
	}
	return entities, nil
}

func (d *DataStore) Invitations(
	ctx context.Context,
	opts ListOptions,
) ([]*tables.FamilyInvitationTable, int, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}

	var c int
	count := sq.Select("COUNT(*)").From("family_invitations")
	applyWhere, err := d.whereFromAdapater("family_invitations", opts.Query)
	if err != nil {
		return nil, 0, err
	}
	count = applyWhere(count)
	err = count.RunWith(d.db).Scan(&c)
	if err != nil {
		return nil, 0, err
	}
	offset := (opts.Page - 1) * opts.PageSize
	if c < int(offset) {
		return []*tables.FamilyInvitationTable{}, c, nil
	}

	var entities []*tables.FamilyInvitationTable
	q := sq.
		Select(
			"id",
			"family_id",
			"inviter_id",
			"invitee_email",
			"invitee_phone",
			"role",
			"status",
			"expires_at",
			"accepted_at",
			"created_at",
			"sent_at",
		).
		From("family_invitations")
	q = applyWhere(q)
	q = d.orderByFromAdapater(q, "family_invitations", "created_at DESC", opts)
	q = q.Offset(uint64(offset)).Limit(uint64(opts.PageSize))
	err = d.selectStatement(ctx, &entities, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	return entities, c, nil
}
