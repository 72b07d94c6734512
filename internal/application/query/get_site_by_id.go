package query

import (
	"context"

	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
)

type GetSite struct {
	uowFactory *dbs.UOWFactory
}

func NewGetSite(uowFactory *dbs.UOWFactory) *GetSite {
	return &GetSite{uowFactory: uowFactory}
}

func (q *GetSite) Query(ctx context.Context, siteID uint64) (site *entity.Site, err error) {
	uow := q.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	return repo.NewSiteRepo(tx).GetSite(ctx, siteID)
}
