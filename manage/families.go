package manage

import (
	"context"

	"go.uber.org/zap"

	"github.com/hearthhq/hearth/db"
)

// FamilyService is the admin-facing view over families
type FamilyService struct {
	store *db.DataStore
	log   *zap.Logger
}

func (f *FamilyService) List(
	ctx context.Context,
	page int,
	pageSize int,
	q string,
	sort string,
) (*PaginationResponse, error) {
	families, total, err := f.store.Families(
		ctx,
		db.ListOptions{Page: page, PageSize: pageSize, Query: q, Sort: sort},
	)
	if err != nil {
		return nil, err
	}
	dtos := make([]*FamilyDTO, 0, len(families))
	for _, v := range families {
		dtos = append(dtos, familyDTOfromDB(v))
	}
	return &PaginationResponse{
		Total:   total,
		Entries: dtos,
	}, nil
}

func NewFamilyService(store *db.DataStore,
	log *zap.Logger) *FamilyService {
	return &FamilyService{
		store: store,
		log:   log,
	}
}
