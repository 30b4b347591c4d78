package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/db"
	"github.com/hearthhq/hearth/events"
	"github.com/hearthhq/hearth/events/event"
	"github.com/hearthhq/hearth/sanitize"
)

var (
	// ErrCodeNotFound indicates an unknown promo code
	ErrCodeNotFound = errors.New("promo code not found")
	// ErrCodeExpired indicates the promo code passed its expiry
	ErrCodeExpired = errors.New("promo code expired")
	// ErrCodeExhausted indicates the redemption cap was reached
	ErrCodeExhausted = errors.New("promo code exhausted")
	// ErrAlreadyRedeemed indicates the user redeemed this code before
	ErrAlreadyRedeemed = errors.New("promo code already redeemed by this user")
	// ErrInvalidCode indicates an unusable code value on creation
	ErrInvalidCode = errors.New("invalid promo code")
)

// Dispatcher dispatches domain events to the registered listeners
type Dispatcher interface {
	Dispatch(event events.Event)
}

func New(store *db.DataStore,
	logger *zap.Logger,
	dispatcher Dispatcher) *Service {
	return &Service{
		store:      store,
		log:        logger,
		dispatcher: dispatcher,
	}
}

// Service handles promo code redemption, each code is redeemable at
// most once per user and capped by its max use count.
type Service struct {
	store      *db.DataStore
	log        *zap.Logger
	dispatcher Dispatcher
}

// Redemption reports a successful redeem back to the caller
type Redemption struct {
	Code        string
	Description string
	RedeemedAt  time.Time
}

// Redeem burns one use of the promo code for the given user. Under
// concurrent redemption of the last remaining use exactly one caller
// succeeds, everyone else gets ErrCodeExhausted.
func (g *Service) Redeem(
	ctx context.Context,
	userID uuid.UUID,
	code string,
) (*Redemption, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeNotFound
	}
	entity, err := g.store.RedeemPromoCode(ctx, code, userID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, ErrCodeNotFound
		case errors.Is(err, db.ErrExpired):
			return nil, ErrCodeExpired
		case errors.Is(err, db.ErrExhausted):
			return nil, ErrCodeExhausted
		case errors.Is(err, db.ErrConsumed):
			return nil, ErrAlreadyRedeemed
		}
		g.log.Error("Could not redeem promo code",
			sanitize.UserInputString("code", code),
			zap.Error(err))
		return nil, err
	}
	g.dispatcher.Dispatch(&event.PromoRedeemed{
		Code:   code,
		UserID: userID,
	})
	return &Redemption{
		Code:        entity.Code,
		Description: entity.Description,
		RedeemedAt:  time.Now().UTC(),
	}, nil
}

// CreateCode registers a new promo code with an optional expiry and a
// mandatory positive use cap
func (g *Service) CreateCode(
	ctx context.Context,
	code string,
	description string,
	maxUses int,
	expiresAt *time.Time,
) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || maxUses <= 0 {
		return ErrInvalidCode
	}
	err := g.store.CreatePromoCode(ctx, code, description, maxUses, expiresAt)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return ErrInvalidCode
		}
		g.log.Error("Could not create promo code",
			sanitize.UserInputString("code", code),
			zap.Error(err))
		return err
	}
	g.dispatcher.Dispatch(&event.PromoCodeCreated{
		Code:    code,
		MaxUses: maxUses,
	})
	return nil
}

// DeleteCode removes a promo code and all of its redemptions
func (g *Service) DeleteCode(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrInvalidCode
	}
	deleted, err := g.store.DeletePromoCode(ctx, code)
	if err != nil {
		g.log.Error("Could not delete promo code",
			sanitize.UserInputString("code", code),
			zap.Error(err))
		return err
	}
	if !deleted {
		return ErrCodeNotFound
	}
	g.dispatcher.Dispatch(&event.PromoCodeDeleted{
		Code: code,
	})
	return nil
}
