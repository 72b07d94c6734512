package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Builder-Lawyers/site-moderation/internal/application/interfaces"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

// siteQuery holds the FROM clause and the filter predicate shared by the
// listing query and its count query.
type siteQuery struct {
	from  string
	where []string
	args  []any
}

func (q *siteQuery) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *siteQuery) predicate() string {
	return "WHERE " + strings.Join(q.where, " AND ")
}

const listedColumns = `wb.id, u.id, u.username, u.email, wb.domain, wb.path,
	COALESCE(bm.meta_value, ''), COALESCE(bm2.meta_value, ''), wb.registered_at`

const metaJoins = `
	LEFT JOIN platform.site_meta bm ON bm.site_id = wb.id AND bm.meta_key = 'last_activity'
	LEFT JOIN platform.site_meta bm2 ON bm2.site_id = wb.id AND bm2.meta_key = 'name'`

// pendingQuery selects sites carrying the moderation flag. Archived sites
// are included on purpose: every pending site is archived.
func pendingQuery(params db.ListParams) *siteQuery {
	q := &siteQuery{
		from: `FROM platform.site_meta b
	JOIN platform.sites wb ON wb.id = b.site_id
	JOIN platform.users u ON u.id::text = b.meta_value` + metaJoins,
	}
	q.where = append(q.where, "b.meta_key = "+q.arg(consts.ModerationKey))
	q.where = append(q.where, "wb.spam = FALSE", "wb.mature = FALSE", "wb.deleted = FALSE")
	if params.UserID != nil {
		q.where = append(q.where, "b.meta_value = "+q.arg(params.UserID.String()))
	}
	q.applySearch(params.Search)
	return q
}

// publicQuery selects the sites shown in the regular directory.
func publicQuery(params db.ListParams) *siteQuery {
	q := &siteQuery{
		from: `FROM platform.social_sites b
	JOIN platform.sites wb ON wb.id = b.site_id
	JOIN platform.users u ON u.id = b.user_id` + metaJoins,
	}
	q.where = append(q.where, "wb.archived = FALSE", "wb.spam = FALSE", "wb.mature = FALSE", "wb.deleted = FALSE")
	if params.UserID != nil {
		q.where = append(q.where, "b.user_id = "+q.arg(*params.UserID))
	}
	q.applySearch(params.Search)
	return q
}

func (q *siteQuery) applySearch(terms string) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return
	}
	q.where = append(q.where, `COALESCE(bm2.meta_value, '') ILIKE `+q.arg("%"+EscapeLike(terms)+"%")+` ESCAPE '\'`)
}

func orderClause(sort consts.SortType) string {
	switch sort {
	case consts.SortAlphabetical:
		return "ORDER BY COALESCE(bm2.meta_value, '') ASC, wb.id ASC"
	case consts.SortNewest:
		return "ORDER BY wb.registered_at DESC, wb.id DESC"
	case consts.SortRandom:
		return "ORDER BY random()"
	default:
		return "ORDER BY COALESCE(bm.meta_value, '') DESC, wb.id DESC"
	}
}

func (q *siteQuery) selectSQL(params db.ListParams) string {
	sql := fmt.Sprintf("SELECT %s %s %s %s", listedColumns, q.from, q.predicate(), orderClause(params.Sort))
	if limit, offset, ok := params.Window(); ok {
		sql += " LIMIT " + q.arg(limit) + " OFFSET " + q.arg(offset)
	}
	return sql
}

func (q *siteQuery) countSQL() string {
	return fmt.Sprintf("SELECT COUNT(DISTINCT wb.id) %s %s", q.from, q.predicate())
}

// EscapeLike escapes LIKE wildcards so search terms match literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type ListingRepo struct {
	tx pgx.Tx
}

var _ interfaces.ListingRepo = (*ListingRepo)(nil)

func NewListingRepo(tx pgx.Tx) *ListingRepo {
	return &ListingRepo{tx: tx}
}

func (r *ListingRepo) ListPending(ctx context.Context, params db.ListParams) (*db.ListResult, error) {
	return r.list(ctx, params, pendingQuery)
}

func (r *ListingRepo) ListPublic(ctx context.Context, params db.ListParams) (*db.ListResult, error) {
	return r.list(ctx, params, publicQuery)
}

func (r *ListingRepo) list(ctx context.Context, params db.ListParams, build func(db.ListParams) *siteQuery) (*db.ListResult, error) {
	paged := build(params)
	rows, err := r.tx.Query(ctx, paged.selectSQL(params), paged.args...)
	if err != nil {
		return nil, fmt.Errorf("err listing sites, %v", err)
	}
	defer rows.Close()

	result := &db.ListResult{Sites: make([]db.ListedSite, 0)}
	for rows.Next() {
		var site db.ListedSite
		if err = rows.Scan(&site.SiteID, &site.AdminUserID, &site.AdminUsername, &site.AdminUserEmail,
			&site.Domain, &site.Path, &site.LastActivity, &site.Name, &site.RegisteredAt); err != nil {
			return nil, fmt.Errorf("err scanning listed site, %v", err)
		}
		result.Sites = append(result.Sites, site)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading result sets, %v", err)
	}
	rows.Close()

	counted := build(params)
	if err = r.tx.QueryRow(ctx, counted.countSQL(), counted.args...).Scan(&result.Total); err != nil {
		return nil, fmt.Errorf("err counting sites, %v", err)
	}

	return result, nil
}
