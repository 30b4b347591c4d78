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

func (d *DataStore) CreatePromoCode(
	ctx context.Context,
	code string,
	description string,
	maxUses int,
	expires *time.Time,
) error {
	ins := sq.Insert("promo_codes").
		Columns("code", "description", "max_uses", "current_uses", "expires_at", "created_at").
		Values(code, description, maxUses, 0, expires, time.Now().UTC())
	_, err := d.insertStatement(ctx, ins, nil)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (d *DataStore) PromoCodeByCode(
	ctx context.Context,
	code string,
) (*tables.PromoCodeTable, error) {
	var entity tables.PromoCodeTable
	q := sq.Select("*").From("promo_codes").Where(sq.Eq{"code": code})
	err := d.getStatement(ctx, &entity, q, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// RedeemPromoCode burns one use of the code for the user. The uses
// counter bump is a single conditional update and the per-user
// uniqueness rides on UNIQUE(promo_code_id, user_id), both inside one
// transaction - same consumption guarantee as invitations.
func (d *DataStore) RedeemPromoCode(
	ctx context.Context,
	code string,
	userID uuid.UUID,
) (*tables.PromoCodeTable, error) {
	promo, err := d.PromoCodeByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if promo.ExpiresAt != nil && !promo.ExpiresAt.After(now) {
		return nil, ErrExpired
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	ins := sq.Insert("promo_redemptions").
		Columns("promo_code_id", "user_id", "redeemed_at").
		Values(promo.ID, userID, now)
	_, err = d.insertStatement(ctx, ins, tx)
	if err != nil {
		d.rollback(tx)
		if isUniqueViolation(err) {
			return nil, ErrConsumed
		}
		return nil, err
	}
	upd := sq.Update("promo_codes").
		Set("current_uses", sq.Expr("current_uses + 1")).
		Where(
			"id = ? AND current_uses < max_uses AND (expires_at IS NULL OR expires_at > ?)",
			promo.ID,
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
		d.rollback(tx)
		return nil, ErrExhausted
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return promo, nil
}

func (d *DataStore) PromoCodes(
	ctx context.Context,
	opts ListOptions,
) ([]*tables.PromoCodeTable, int, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}

	var c int
	count := sq.Select("COUNT(*)").From("promo_codes")
	applyWhere, err := d.whereFromAdapater("promo_codes", opts.Query)
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
		return []*tables.PromoCodeTable{}, c, nil
	}

	var entities []*tables.PromoCodeTable
	q := sq.
		Select("id", "code", "description", "max_uses", "current_uses", "expires_at", "created_at").
		From("promo_codes")
	q = applyWhere(q)
	q = d.orderByFromAdapater(q, "promo_codes", "id DESC", opts)
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

// DeletePromoCode removes a promo code together with its redemption
// rows. Reported as a no-op when the code does not exist.
func (d *DataStore) DeletePromoCode(ctx context.Context, code string) (bool, error) {
	promo, err := d.PromoCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	// redemptions reference the code row, they have to go first
	_, err = d.deleteStatement(
		ctx,
		sq.Delete("promo_redemptions").Where(sq.Eq{"promo_code_id": promo.ID}),
		tx,
	)
	if err != nil {
		d.rollback(tx)
		return false, err
	}
	rs, err := d.deleteStatement(
		ctx,
		sq.Delete("promo_codes").Where(sq.Eq{"id": promo.ID}),
		tx,
	)
	if err != nil {
		d.rollback(tx)
		return false, err
	}
	affected, err := rs.RowsAffected()
	if err != nil {
		d.rollback(tx)
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}
