package manage

import (
	"context"

	"go.uber.org/zap"

	"github.com/hearthhq/hearth/db"
)

// InviteService is the admin-facing view over family invitations.
// Everything it returns went through the token-free DTO, there is no
// way to read a raw invitation token out of this service.
type InviteService struct {
	store *db.DataStore
	log   *zap.Logger
}

func (i *InviteService) List(
	ctx context.Context,
	page int,
	pageSize int,
	q string,
	sort string,
) (*PaginationResponse, error) {
	invites, total, err := i.store.Invitations(
		ctx,
		db.ListOptions{Page: page, PageSize: pageSize, Query: q, Sort: sort},
	)
	if err != nil {
		return nil, err
	}
	dtos := make([]*InvitationDTO, 0, len(invites))
	for _, v := range invites {
		dtos = append(dtos, invitationDTOfromDB(v))
	}
	return &PaginationResponse{
		Total:   total,
		Entries: dtos,
	}, nil
}

func NewInviteService(store *db.DataStore,
	log *zap.Logger) *InviteService {
	return &InviteService{
		store: store,
		log:   log,
	}
}
