package management

import (
	"context"
	"time"

	"github.com/hearthhq/hearth/manage"
)

// Lister enables querrying paginated
// lists from the underlying datasource
type Lister interface {
	List(
		ctx context.Context,
		page int,
		pageSize int,
		q string,
		sort string,
	) (*manage.PaginationResponse, error)
}

// FamilyLister enables browsing all families
type FamilyLister interface {
	Lister
}

// InviteLister enables browsing all invitations
type InviteLister interface {
	Lister
}

// PromoAdminService enables managing promo codes
type PromoAdminService interface {
	Lister
	Create(
		ctx context.Context,
		code string,
		description string,
		maxUses int,
		expiresAt *time.Time,
	) error
	Delete(ctx context.Context, code string) error
}
