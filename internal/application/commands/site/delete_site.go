package site

import (
	"context"
	"log/slog"

	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/application/hooks"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
)

type DeleteSite struct {
	uowFactory *dbs.UOWFactory
	hooks      *hooks.Registry
}

func NewDeleteSite(uowFactory *dbs.UOWFactory, hooks *hooks.Registry) *DeleteSite {
	return &DeleteSite{uowFactory: uowFactory, hooks: hooks}
}

// Execute fires the deleting hooks while the site's rows still exist. With
// drop the rows are removed and the site's files are queued for purging,
// otherwise the site is only flagged deleted.
func (c *DeleteSite) Execute(ctx context.Context, siteID uint64, drop bool) (err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	sites := repo.NewSiteRepo(tx)
	if _, err = sites.GetSite(ctx, siteID); err != nil {
		return err
	}

	if err = c.hooks.FireSiteDeleting(ctx, tx, &hooks.SiteDeleting{SiteID: siteID, Drop: drop}); err != nil {
		return err
	}

	if !drop {
		return sites.MarkDeleted(ctx, siteID)
	}
	if err = sites.DropSite(ctx, siteID); err != nil {
		return err
	}
	if err = repo.NewEventRepo(tx).InsertEvent(ctx, events.PurgeSiteFiles{SiteID: siteID}); err != nil {
		return err
	}
	slog.Info("site dropped", "siteID", siteID)
	return nil
}
