package query

import (
	"context"
	"strings"

	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
)

type GetSiteByAddress struct {
	uowFactory *dbs.UOWFactory
}

func NewGetSiteByAddress(uowFactory *dbs.UOWFactory) *GetSiteByAddress {
	return &GetSiteByAddress{uowFactory: uowFactory}
}

// Query resolves the site serving host and requestPath. Path installs are
// matched on the first path segment, falling back to the host's root site.
func (q *GetSiteByAddress) Query(ctx context.Context, host, requestPath string) (site *entity.Site, err error) {
	uow := q.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	return repo.NewSiteRepo(tx).FindByAddress(ctx, normalizeHost(host), firstSegment(requestPath))
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndexByte(host, ':'); i > 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host
}

func firstSegment(requestPath string) string {
	trimmed := strings.Trim(requestPath, "/")
	if trimmed == "" {
		return "/"
	}
	segment, _, _ := strings.Cut(trimmed, "/")
	return "/" + strings.ToLower(segment) + "/"
}
