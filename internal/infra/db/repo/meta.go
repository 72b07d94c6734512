package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Builder-Lawyers/site-moderation/internal/application/interfaces"
	"github.com/jackc/pgx/v5"
)

// MetaRepo covers both per-site key/value stores: the generic metadata
// store (site_meta) and the legacy options store (site_options).
type MetaRepo struct {
	tx pgx.Tx
}

var _ interfaces.MetaRepo = (*MetaRepo)(nil)

func NewMetaRepo(tx pgx.Tx) *MetaRepo {
	return &MetaRepo{tx: tx}
}

func (r *MetaRepo) GetMeta(ctx context.Context, siteID uint64, key string) (string, error) {
	return r.get(ctx, "SELECT meta_value FROM platform.site_meta WHERE site_id = $1 AND meta_key = $2", siteID, key)
}

func (r *MetaRepo) UpdateMeta(ctx context.Context, siteID uint64, key, value string) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO platform.site_meta(site_id, meta_key, meta_value) VALUES ($1,$2,$3)
		ON CONFLICT (site_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`, siteID, key, value)
	if err != nil {
		return fmt.Errorf("err updating site meta %s, %v", key, err)
	}
	return nil
}

func (r *MetaRepo) DeleteMeta(ctx context.Context, siteID uint64, key string) error {
	_, err := r.tx.Exec(ctx, "DELETE FROM platform.site_meta WHERE site_id = $1 AND meta_key = $2", siteID, key)
	if err != nil {
		return fmt.Errorf("err deleting site meta %s, %v", key, err)
	}
	return nil
}

func (r *MetaRepo) GetOption(ctx context.Context, siteID uint64, name string) (string, error) {
	return r.get(ctx, "SELECT option_value FROM platform.site_options WHERE site_id = $1 AND option_name = $2", siteID, name)
}

func (r *MetaRepo) UpdateOption(ctx context.Context, siteID uint64, name, value string) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO platform.site_options(site_id, option_name, option_value) VALUES ($1,$2,$3)
		ON CONFLICT (site_id, option_name) DO UPDATE SET option_value = EXCLUDED.option_value`, siteID, name, value)
	if err != nil {
		return fmt.Errorf("err updating site option %s, %v", name, err)
	}
	return nil
}

func (r *MetaRepo) DeleteOption(ctx context.Context, siteID uint64, name string) error {
	_, err := r.tx.Exec(ctx, "DELETE FROM platform.site_options WHERE site_id = $1 AND option_name = $2", siteID, name)
	if err != nil {
		return fmt.Errorf("err deleting site option %s, %v", name, err)
	}
	return nil
}

func (r *MetaRepo) GetNetworkOption(ctx context.Context, name string) (string, error) {
	return r.get(ctx, "SELECT value FROM platform.network_options WHERE name = $1", name)
}

func (r *MetaRepo) UpdateNetworkOption(ctx context.Context, name, value string) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO platform.network_options(name, value) VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`, name, value)
	if err != nil {
		return fmt.Errorf("err updating network option %s, %v", name, err)
	}
	return nil
}

// get returns an empty string for missing keys.
func (r *MetaRepo) get(ctx context.Context, query string, args ...any) (string, error) {
	var value string
	err := r.tx.QueryRow(ctx, query, args...).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("err reading key/value, %v", err)
	}
	return value, nil
}
