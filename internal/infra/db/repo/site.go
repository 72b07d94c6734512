package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/interfaces"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const siteColumns = `s.id, s.domain, s.path, s.archived, s.spam, s.mature, s.deleted, s.registered_at,
	COALESCE((SELECT o.option_value FROM platform.site_options o WHERE o.site_id = s.id AND o.option_name = 'blogname'), '')`

type SiteRepo struct {
	tx pgx.Tx
}

var _ interfaces.SiteRepo = (*SiteRepo)(nil)

func NewSiteRepo(tx pgx.Tx) *SiteRepo {
	return &SiteRepo{tx: tx}
}

func (r *SiteRepo) GetSite(ctx context.Context, siteID uint64) (*entity.Site, error) {
	row := r.tx.QueryRow(ctx, "SELECT "+siteColumns+" FROM platform.sites s WHERE s.id = $1", siteID)
	return scanSite(row, siteID)
}

// FindByAddress resolves a site by host and path. Root sites use path "/".
func (r *SiteRepo) FindByAddress(ctx context.Context, domain, path string) (*entity.Site, error) {
	row := r.tx.QueryRow(ctx, "SELECT "+siteColumns+` FROM platform.sites s
		WHERE s.domain = $1 AND (s.path = $2 OR s.path = '/') ORDER BY length(s.path) DESC LIMIT 1`, domain, path)
	return scanSite(row, domain+path)
}

func scanSite(row pgx.Row, id any) (*entity.Site, error) {
	var site entity.Site
	err := row.Scan(&site.ID, &site.Domain, &site.Path, &site.Archived, &site.Spam, &site.Mature, &site.Deleted,
		&site.RegisteredAt, &site.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundError{Entity: "site", ID: id}
		}
		return nil, fmt.Errorf("err getting site, %v", err)
	}
	return &site, nil
}

func (r *SiteRepo) InsertSite(ctx context.Context, site *entity.Site) (uint64, error) {
	now := time.Now()
	var id uint64
	err := r.tx.QueryRow(ctx, `INSERT INTO platform.sites(domain, path, archived, registered_at, updated_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`, site.Domain, site.Path, site.Archived, now, now).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, errs.ConflictError{Entity: "site " + site.Domain + site.Path, Err: err}
		}
		return 0, fmt.Errorf("insert failed: %v", err)
	}
	site.ID = id
	site.RegisteredAt = now
	return id, nil
}

func (r *SiteRepo) SetArchived(ctx context.Context, siteID uint64, archived bool) error {
	tag, err := r.tx.Exec(ctx, "UPDATE platform.sites SET archived = $1, updated_at = $2 WHERE id = $3", archived, time.Now(), siteID)
	if err != nil {
		return fmt.Errorf("err updating archived flag, %v", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFoundError{Entity: "site", ID: siteID}
	}
	return nil
}

func (r *SiteRepo) MarkDeleted(ctx context.Context, siteID uint64) error {
	_, err := r.tx.Exec(ctx, "UPDATE platform.sites SET deleted = TRUE, updated_at = $1 WHERE id = $2", time.Now(), siteID)
	if err != nil {
		return fmt.Errorf("err marking site deleted, %v", err)
	}
	return nil
}

// DropSite removes the site row; meta, options and the social record cascade.
func (r *SiteRepo) DropSite(ctx context.Context, siteID uint64) error {
	_, err := r.tx.Exec(ctx, "DELETE FROM platform.sites WHERE id = $1", siteID)
	if err != nil {
		return fmt.Errorf("err deleting site, %v", err)
	}
	return nil
}

func (r *SiteRepo) RecordSocialSite(ctx context.Context, siteID uint64, userID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO platform.social_sites(site_id, user_id, recorded_at) VALUES ($1,$2,$3)
		ON CONFLICT (site_id) DO UPDATE SET user_id = EXCLUDED.user_id`, siteID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("err recording social site, %v", err)
	}
	return nil
}

func (r *SiteRepo) TouchActivity(ctx context.Context, siteID uint64) error {
	meta := NewMetaRepo(r.tx)
	return meta.UpdateMeta(ctx, siteID, consts.MetaLastActivity, time.Now().UTC().Format(ActivityLayout))
}

// ActivityLayout sorts lexicographically in time order.
const ActivityLayout = "2006-01-02 15:04:05"
