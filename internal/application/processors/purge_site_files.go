package processors

import (
	"context"
	"log/slog"

	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/storage"
	shared "github.com/Builder-Lawyers/site-moderation/pkg/interfaces"
)

type FilePurger interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type PurgeSiteFiles struct {
	files FilePurger
}

func NewPurgeSiteFiles(files FilePurger) *PurgeSiteFiles {
	return &PurgeSiteFiles{files: files}
}

// Handle deletes every stored file of a dropped site. Storage failures are
// retried on the next poll.
func (c *PurgeSiteFiles) Handle(ctx context.Context, event events.PurgeSiteFiles) (shared.UoW, error) {
	deleted, err := c.files.DeletePrefix(ctx, storage.SitePrefix(event.SiteID))
	if err != nil {
		return nil, errs.RetryableError{Err: err}
	}
	slog.Info("purged site files", "siteID", event.SiteID, "count", deleted)
	return nil, nil
}
