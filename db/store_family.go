package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hearthhq/hearth/db/tables"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CreateFamily inserts the family and the creators own active
// membership in one transaction
func (d *DataStore) CreateFamily(
	ctx context.Context,
	name string,
	joinCode string,
	createdBy uuid.UUID,
	creatorRole string,
) (uuid.UUID, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	now := time.Now().UTC()
	familyID := uuid.New()
	fam := sq.Insert("families").
		Columns("id", "name", "join_code", "created_by", "created_at").
		Values(familyID, name, joinCode, createdBy, now)
	_, err = d.insertStatement(ctx, fam, tx)
	if err != nil {
		d.rollback(tx)
		if isUniqueViolation(err) {
			return uuid.Nil, ErrAlreadyExists
		}
		return uuid.Nil, err
	}
	mem := sq.Insert("family_members").
		Columns("id", "family_id", "user_id", "inviter_id", "role", "is_active", "joined_at").
		Values(uuid.New(), familyID, createdBy, nil, creatorRole, true, now)
	_, err = d.insertStatement(ctx, mem, tx)
	if err != nil {
		d.rollback(tx)
		return uuid.Nil, err
	}
	return familyID, tx.Commit()
}

func (d *DataStore) FamilyByID(ctx context.Context, id uuid.UUID) (*tables.FamilyTable, error) {
	var entity tables.FamilyTable
	q := sq.Select("*").From("families").Where(sq.Eq{"id": id})
	err := d.getStatement(ctx, &entity, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (d *DataStore) FamilyByJoinCode(
	ctx context.Context,
	code string,
) (*tables.FamilyTable, error) {
	var entity tables.FamilyTable
	q := sq.Select("*").From("families").Where(sq.Eq{"join_code": code})
	err := d.getStatement(ctx, &entity, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (d *DataStore) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	return d.exists(ctx, "families", sq.Eq{"join_code": code})
}

// RotateJoinCode swaps the family join code, the old code stops
// resolving the moment this commits
func (d *DataStore) RotateJoinCode(
	ctx context.Context,
	familyID uuid.UUID,
	newCode string,
) (bool, error) {
	q := sq.Update("families").
		Set("join_code", newCode).
		Set("updated_at", time.Now().UTC()).
		Where("id = ?", familyID)
	rs, err := d.updateStatement(ctx, q, nil)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrAlreadyExists
		}
		return false, err
	}
	affected, err := rs.RowsAffected()
	return affected > 0, err
}

func (d *DataStore) IsActiveMember(
	ctx context.Context,
	familyID uuid.UUID,
	userID uuid.UUID,
) (bool, error) {
	return d.exists(
		ctx,
		"family_members",
		sq.Eq{"family_id": familyID, "user_id": userID, "is_active": true},
	)
}

// ActiveMemberRole returns the role of an active member or ErrNotFound
func (d *DataStore) ActiveMemberRole(
	ctx context.Context,
	familyID uuid.UUID,
	userID uuid.UUID,
) (string, error) {
	var role string
	q := sq.Select("role").
		From("family_members").
		Where(sq.Eq{"family_id": familyID, "user_id": userID, "is_active": true})
	err := d.getStatement(ctx, &role, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return role, nil
}

func (d *DataStore) FamilyMembers(
	ctx context.Context,
	familyID uuid.UUID,
) ([]*tables.FamilyMemberTable, error) {
	var entities []*tables.FamilyMemberTable
	q := sq.Select("*").
		From("family_members").
		Where(sq.Eq{"family_id": familyID, "is_active": true}).
		OrderBy("joined_at ASC")
	err := d.selectStatement(ctx, &entities, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*tables.FamilyMemberTable{}, nil
		}
		return nil, err
	}
	return entities, nil
}

// MembershipsByUser lists every active membership of a user together
// with the family it belongs to. Multi-family membership is a
// first-class concept, there is no implicit "current" family.
func (d *DataStore) MembershipsByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*MembershipData, error) {
	var entities []*MembershipData
	q := sq.Select(
		"family_members.family_id",
		"families.name",
		"families.join_code",
		"family_members.role",
		"family_members.joined_at",
	).
		From("family_members").
		Join("families ON families.id = family_members.family_id").
		Where(sq.Eq{"family_members.user_id": userID, "family_members.is_active": true}).
		OrderBy("family_members.joined_at ASC")
	err := d.selectStatement(ctx, &entities, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*MembershipData{}, nil
		}
		return nil, err
	}
	return entities, nil
}

// upsertMembership creates or reactivates the (family, user)
// membership row inside the supplied transaction. It is the one shared
// primitive both the invitation acceptance and the join-by-code path
// go through, so the two entry paths cannot drift apart.
// Returns ErrAlreadyExists when an active membership is already there.
func (d *DataStore) upsertMembership(
	ctx context.Context,
	tx *sqlx.Tx,
	familyID uuid.UUID,
	userID uuid.UUID,
	inviterID *uuid.UUID,
	role string,
) error {
	now := time.Now().UTC()
	var existing tables.FamilyMemberTable
	sel := sq.Select("*").
		From("family_members").
		Where(sq.Eq{"family_id": familyID, "user_id": userID})
	err := d.getStatement(ctx, &existing, sel, tx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err == nil {
		if existing.IsActive {
			return ErrAlreadyExists
		}
		// rejoin: flip the row back, conditional on it still being
		// inactive so a concurrent reactivation loses cleanly
		upd := sq.Update("family_members").
			Set("is_active", true).
			Set("role", role).
			Set("inviter_id", inviterID).
			Set("joined_at", now).
			Set("deactivated_at", nil).
			Where("id = ? AND is_active = ?", existing.ID, false)
		rs, err := d.updateStatement(ctx, upd, tx)
		if err != nil {
			return err
		}
		affected, err := rs.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyExists
		}
		return nil
	}
	ins := sq.Insert("family_members").
		Columns("id", "family_id", "user_id", "inviter_id", "role", "is_active", "joined_at").
		Values(uuid.New(), familyID, userID, inviterID, role, true, now)
	_, err = d.insertStatement(ctx, ins, tx)
	if err != nil {
		// the UNIQUE(family_id, user_id) constraint catches the
		// concurrent-insert race the select above cannot see
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// JoinFamily atomically adds (or reactivates) an active membership for
// the user in the family identified by the join code.
func (d *DataStore) JoinFamily(
	ctx context.Context,
	code string,
	userID uuid.UUID,
	role string,
) (*tables.FamilyTable, error) {
	fam, err := d.FamilyByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	err = d.upsertMembership(ctx, tx, fam.ID, userID, nil, role)
	if err != nil {
		d.rollback(tx)
		return nil, err
	}
	return fam, tx.Commit()
}

// DeactivateMembership marks the membership inactive, conditional so a
// double leave is a reported no-op rather than an error
func (d *DataStore) DeactivateMembership(
	ctx context.Context,
	familyID uuid.UUID,
	userID uuid.UUID,
) (bool, error) {
	q := sq.Update("family_members").
		Set("is_active", false).
		Set("deactivated_at", time.Now().UTC()).
		Where("family_id = ? AND user_id = ? AND is_active = ?", familyID, userID, true)
	rs, err := d.updateStatement(ctx, q, nil)
	if err != nil {
		return false, err
	}
	affected, err := rs.RowsAffected()
	return affected > 0, err
}

func (d *DataStore) Families(
	ctx context.Context,
	opts ListOptions,
) ([]*tables.FamilyTable, int, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}

	var c int
	count := sq.Select("COUNT(*)").From("families")
	applyWhere, err := d.whereFromAdapater("families", opts.Query)
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
		return []*tables.FamilyTable{}, c, nil
	}

	var entities []*tables.FamilyTable
	q := sq.
		Select("id", "name", "join_code", "created_by", "created_at", "updated_at").
		From("families")
	q = applyWhere(q)
	q = d.orderByFromAdapater(q, "families", "created_at DESC", opts)
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

func (d *DataStore) rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil {
		d.log.Error("couldnt rollback", zap.Error(err))
	}
}
