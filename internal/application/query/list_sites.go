package query

import (
	"context"

	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
)

type ListSites struct {
	uowFactory *dbs.UOWFactory
}

func NewListSites(uowFactory *dbs.UOWFactory) *ListSites {
	return &ListSites{uowFactory: uowFactory}
}

// Query lists the public directory: recorded sites that are not archived,
// spam, mature or deleted.
func (q *ListSites) Query(ctx context.Context, req dto.DirectoryRequest) (result *db.ListResult, err error) {
	uow := q.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	return repo.NewListingRepo(tx).ListPublic(ctx, req.ListParams())
}
