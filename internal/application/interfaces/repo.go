package interfaces

import (
	"context"

	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/pkg/interfaces"
	"github.com/google/uuid"
)

type EventRepo interface {
	InsertEvent(ctx context.Context, event interfaces.Event) error
}

type SiteRepo interface {
	GetSite(ctx context.Context, siteID uint64) (*entity.Site, error)
	FindByAddress(ctx context.Context, domain, path string) (*entity.Site, error)
	InsertSite(ctx context.Context, site *entity.Site) (uint64, error)
	SetArchived(ctx context.Context, siteID uint64, archived bool) error
	MarkDeleted(ctx context.Context, siteID uint64) error
	DropSite(ctx context.Context, siteID uint64) error
	RecordSocialSite(ctx context.Context, siteID uint64, userID uuid.UUID) error
}

type MetaRepo interface {
	GetMeta(ctx context.Context, siteID uint64, key string) (string, error)
	UpdateMeta(ctx context.Context, siteID uint64, key, value string) error
	DeleteMeta(ctx context.Context, siteID uint64, key string) error
	GetOption(ctx context.Context, siteID uint64, name string) (string, error)
	UpdateOption(ctx context.Context, siteID uint64, name, value string) error
	DeleteOption(ctx context.Context, siteID uint64, name string) error
	GetNetworkOption(ctx context.Context, name string) (string, error)
}

type UserRepo interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}

type ListingRepo interface {
	ListPending(ctx context.Context, params db.ListParams) (*db.ListResult, error)
	ListPublic(ctx context.Context, params db.ListParams) (*db.ListResult, error)
}
