package manage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hearthhq/hearth/db"
	"github.com/hearthhq/hearth/promo"
)

// PromoService is the admin-facing view over promo codes
type PromoService struct {
	store   *db.DataStore
	log     *zap.Logger
	creator *promo.Service
}

func (p *PromoService) List(
	ctx context.Context,
	page int,
	pageSize int,
	q string,
	sort string,
) (*PaginationResponse, error) {
	codes, total, err := p.store.PromoCodes(
		ctx,
		db.ListOptions{Page: page, PageSize: pageSize, Query: q, Sort: sort},
	)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PromoCodeDTO, 0, len(codes))
	for _, v := range codes {
		dtos = append(dtos, promoCodeDTOfromDB(v))
	}
	return &PaginationResponse{
		Total:   total,
		Entries: dtos,
	}, nil
}

func (p *PromoService) Create(
	ctx context.Context,
	code string,
	description string,
	maxUses int,
	expiresAt *time.Time,
) error {
	return p.creator.CreateCode(ctx, code, description, maxUses, expiresAt)
}

func (p *PromoService) Delete(ctx context.Context, code string) error {
	return p.creator.DeleteCode(ctx, code)
}

func NewPromoService(store *db.DataStore,
	log *zap.Logger,
	creator *promo.Service) *PromoService {
	return &PromoService{
		store:   store,
		log:     log,
		creator: creator,
	}
}
