package site

import (
	"context"

	"github.com/Builder-Lawyers/site-moderation/internal/application/hooks"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
	"github.com/google/uuid"
)

type UpdateArchived struct {
	uowFactory *dbs.UOWFactory
	hooks      *hooks.Registry
}

func NewUpdateArchived(uowFactory *dbs.UOWFactory, hooks *hooks.Registry) *UpdateArchived {
	return &UpdateArchived{uowFactory: uowFactory, hooks: hooks}
}

// Execute sets the archived flag. Unarchiving fires the unarchived hooks in
// the same transaction.
func (c *UpdateArchived) Execute(ctx context.Context, siteID uint64, archived bool, actorID uuid.UUID) (err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	if err = repo.NewSiteRepo(tx).SetArchived(ctx, siteID, archived); err != nil {
		return err
	}
	if archived {
		return nil
	}
	return c.hooks.FireSiteUnarchived(ctx, tx, &hooks.SiteUnarchived{SiteID: siteID, ActorID: actorID})
}
