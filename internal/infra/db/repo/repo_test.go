package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	"github.com/Builder-Lawyers/site-moderation/internal/testinfra"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

var uowFactory *dbs.UOWFactory

func TestMain(m *testing.M) {
	ctx := context.Background()

	uowFactory = dbs.NewUoWFactory(testinfra.Pool)
	code := m.Run()

	testinfra.Reset(ctx)

	os.Exit(code)
}

func begin(t *testing.T) pgx.Tx {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	t.Cleanup(func() { _ = uow.Rollback() })
	return tx
}

func insertUser(t *testing.T, tx pgx.Tx, username string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := tx.Exec(context.Background(),
		"INSERT INTO platform.users(id, username, email) VALUES ($1, $2, $3)", id, username, username+"@example.com")
	require.NoError(t, err)
	return id
}

func insertSite(t *testing.T, tx pgx.Tx, path, name string, archived bool) uint64 {
	t.Helper()
	ctx := context.Background()
	siteID, err := repo.NewSiteRepo(tx).InsertSite(ctx, &entity.Site{Domain: "example.com", Path: path, Archived: archived})
	require.NoError(t, err)
	meta := repo.NewMetaRepo(tx)
	require.NoError(t, meta.UpdateOption(ctx, siteID, consts.OptionBlogname, name))
	require.NoError(t, meta.UpdateMeta(ctx, siteID, consts.MetaName, name))
	return siteID
}

func TestInsertSiteThenGetReturnsNameFromOptions(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	siteID := insertSite(t, tx, "/alpha/", "Alpha", true)

	site, err := repo.NewSiteRepo(tx).GetSite(ctx, siteID)
	require.NoError(t, err)
	require.Equal(t, "Alpha", site.Name)
	require.True(t, site.Archived)
	require.Equal(t, "https://example.com/alpha/", site.HomeURL("https"))
}

func TestGetSiteMissingReturnsNotFound(t *testing.T) {
	tx := begin(t)

	_, err := repo.NewSiteRepo(tx).GetSite(context.Background(), 987654)
	require.ErrorAs(t, err, &errs.NotFoundError{})
}

func TestFindByAddressPrefersPathInstallOverRoot(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	rootID := insertSite(t, tx, "/", "Root", false)
	subID := insertSite(t, tx, "/blog/", "Blog", false)
	sites := repo.NewSiteRepo(tx)

	site, err := sites.FindByAddress(ctx, "example.com", "/blog/")
	require.NoError(t, err)
	require.Equal(t, subID, site.ID)

	site, err = sites.FindByAddress(ctx, "example.com", "/unknown/")
	require.NoError(t, err)
	require.Equal(t, rootID, site.ID)
}

func TestSetArchivedUnknownSiteReturnsNotFound(t *testing.T) {
	tx := begin(t)

	err := repo.NewSiteRepo(tx).SetArchived(context.Background(), 987654, false)
	require.ErrorAs(t, err, &errs.NotFoundError{})
}

func TestDropSiteCascadesToMetaOptionsAndSocialRecord(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	userID := insertUser(t, tx, "dropper")
	siteID := insertSite(t, tx, "/drop/", "Drop", false)
	sites := repo.NewSiteRepo(tx)
	require.NoError(t, sites.RecordSocialSite(ctx, siteID, userID))

	require.NoError(t, sites.DropSite(ctx, siteID))

	var count int
	err := tx.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM platform.site_meta WHERE site_id = $1) +
		(SELECT COUNT(*) FROM platform.site_options WHERE site_id = $1) +
		(SELECT COUNT(*) FROM platform.social_sites WHERE site_id = $1)`, siteID).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMetaRepoMissingKeyIsEmpty(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	siteID := insertSite(t, tx, "/meta/", "Meta", false)
	meta := repo.NewMetaRepo(tx)

	value, err := meta.GetOption(ctx, siteID, consts.ModerationKey)
	require.NoError(t, err)
	require.Empty(t, value)

	require.NoError(t, meta.UpdateOption(ctx, siteID, consts.ModerationKey, "a"))
	require.NoError(t, meta.UpdateOption(ctx, siteID, consts.ModerationKey, "b"))
	value, err = meta.GetOption(ctx, siteID, consts.ModerationKey)
	require.NoError(t, err)
	require.Equal(t, "b", value)

	require.NoError(t, meta.DeleteOption(ctx, siteID, consts.ModerationKey))
	value, err = meta.GetOption(ctx, siteID, consts.ModerationKey)
	require.NoError(t, err)
	require.Empty(t, value)
}

func TestNetworkOptionsAreSeeded(t *testing.T) {
	tx := begin(t)

	value, err := repo.NewMetaRepo(tx).GetNetworkOption(context.Background(), consts.NetworkRegistrationNotification)
	require.NoError(t, err)
	require.Equal(t, "yes", value)
}

func TestGetUserFallsBackToUsernameForDisplayName(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	userID := insertUser(t, tx, "plainname")

	user, err := repo.NewUserRepo(tx).GetUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "plainname", user.DisplayName)

	_, err = repo.NewUserRepo(tx).GetUser(ctx, uuid.New())
	require.ErrorAs(t, err, &errs.NotFoundError{})
}

func TestInsertEventStoresPayload(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	err := repo.NewEventRepo(tx).InsertEvent(ctx, events.PurgeSiteFiles{SiteID: 42})
	require.NoError(t, err)

	var outbox db.Outbox
	err = tx.QueryRow(ctx, "SELECT id, event, status, payload, created_at FROM platform.outbox ORDER BY id DESC LIMIT 1").
		Scan(&outbox.ID, &outbox.Event, &outbox.Status, &outbox.Payload, &outbox.CreatedAt)
	require.NoError(t, err)
	require.Equal(t, "PurgeSiteFiles", outbox.Event)

	purge, err := db.MapOutboxModelToPurgeSiteFiles(outbox)
	require.NoError(t, err)
	require.Equal(t, uint64(42), purge.SiteID)
}

func flag(t *testing.T, tx pgx.Tx, siteID uint64, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, repo.NewMetaRepo(tx).UpdateMeta(context.Background(), siteID, consts.ModerationKey, userID.String()))
}

func TestListPendingFiltersByFlagAndUser(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	alice := insertUser(t, tx, "alice")
	bob := insertUser(t, tx, "bob")
	a := insertSite(t, tx, "/a/", "Apples", true)
	b := insertSite(t, tx, "/b/", "Bananas", true)
	insertSite(t, tx, "/c/", "Cherries", false)
	flag(t, tx, a, alice)
	flag(t, tx, b, bob)

	listing := repo.NewListingRepo(tx)

	all, err := listing.ListPending(ctx, db.ListParams{Sort: consts.SortAlphabetical})
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
	require.Len(t, all.Sites, 2)
	require.Equal(t, "Apples", all.Sites[0].Name)
	require.Equal(t, "alice", all.Sites[0].AdminUsername)

	onlyBob, err := listing.ListPending(ctx, db.ListParams{UserID: &bob})
	require.NoError(t, err)
	require.Equal(t, 1, onlyBob.Total)
	require.Equal(t, b, onlyBob.Sites[0].SiteID)
}

func TestListPendingCountIgnoresPagination(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	owner := insertUser(t, tx, "owner")
	for i, name := range []string{"One", "Two", "Three"} {
		siteID := insertSite(t, tx, "/p"+string(rune('a'+i))+"/", name, true)
		flag(t, tx, siteID, owner)
	}

	page, err := repo.NewListingRepo(tx).ListPending(ctx, db.ListParams{Sort: consts.SortNewest, Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Sites, 1)
}

func TestListPendingSearchMatchesNameLiterally(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	owner := insertUser(t, tx, "searcher")
	hit := insertSite(t, tx, "/s1/", "100% Cotton", true)
	miss := insertSite(t, tx, "/s2/", "1000 Cotton", true)
	flag(t, tx, hit, owner)
	flag(t, tx, miss, owner)

	res, err := repo.NewListingRepo(tx).ListPending(ctx, db.ListParams{Search: "0%"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Equal(t, hit, res.Sites[0].SiteID)
}

func TestListPendingSortsByLastActivity(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	owner := insertUser(t, tx, "sorter")
	older := insertSite(t, tx, "/old/", "Old", true)
	newer := insertSite(t, tx, "/new/", "New", true)
	flag(t, tx, older, owner)
	flag(t, tx, newer, owner)
	meta := repo.NewMetaRepo(tx)
	now := time.Now().UTC()
	require.NoError(t, meta.UpdateMeta(ctx, older, consts.MetaLastActivity, now.Add(-time.Hour).Format(repo.ActivityLayout)))
	require.NoError(t, meta.UpdateMeta(ctx, newer, consts.MetaLastActivity, now.Format(repo.ActivityLayout)))

	res, err := repo.NewListingRepo(tx).ListPending(ctx, db.ListParams{Sort: consts.SortActive})
	require.NoError(t, err)
	require.Equal(t, []uint64{newer, older}, []uint64{res.Sites[0].SiteID, res.Sites[1].SiteID})
}

func listedIDs(res *db.ListResult) []uint64 {
	ids := make([]uint64, 0, len(res.Sites))
	for _, site := range res.Sites {
		ids = append(ids, site.SiteID)
	}
	return ids
}

// sortFixture inserts Banana, Cherry and Apple, registered in that order.
func sortFixture(t *testing.T, tx pgx.Tx, archived bool) (apple, banana, cherry uint64) {
	t.Helper()
	ctx := context.Background()
	banana = insertSite(t, tx, "/banana/", "Banana", archived)
	cherry = insertSite(t, tx, "/cherry/", "Cherry", archived)
	apple = insertSite(t, tx, "/apple/", "Apple", archived)
	registered := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, siteID := range []uint64{banana, cherry, apple} {
		_, err := tx.Exec(ctx, "UPDATE platform.sites SET registered_at = $2 WHERE id = $1",
			siteID, registered.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	return apple, banana, cherry
}

func TestListPendingSortOrders(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	owner := insertUser(t, tx, "orderer")
	apple, banana, cherry := sortFixture(t, tx, true)
	for _, siteID := range []uint64{apple, banana, cherry} {
		flag(t, tx, siteID, owner)
	}
	listing := repo.NewListingRepo(tx)

	res, err := listing.ListPending(ctx, db.ListParams{Sort: consts.SortAlphabetical})
	require.NoError(t, err)
	require.Equal(t, []uint64{apple, banana, cherry}, listedIDs(res))

	res, err = listing.ListPending(ctx, db.ListParams{Sort: consts.SortNewest})
	require.NoError(t, err)
	require.Equal(t, []uint64{apple, cherry, banana}, listedIDs(res))

	res, err = listing.ListPending(ctx, db.ListParams{Sort: consts.SortRandom, Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Equal(t, 3, res.Total)
	require.ElementsMatch(t, []uint64{apple, banana, cherry}, listedIDs(res))
}

func TestListPublicSortOrders(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	owner := insertUser(t, tx, "lister")
	apple, banana, cherry := sortFixture(t, tx, false)
	sites := repo.NewSiteRepo(tx)
	for _, siteID := range []uint64{apple, banana, cherry} {
		require.NoError(t, sites.RecordSocialSite(ctx, siteID, owner))
	}
	listing := repo.NewListingRepo(tx)

	res, err := listing.ListPublic(ctx, db.ListParams{Sort: consts.SortAlphabetical})
	require.NoError(t, err)
	require.Equal(t, []uint64{apple, banana, cherry}, listedIDs(res))

	res, err = listing.ListPublic(ctx, db.ListParams{Sort: consts.SortNewest})
	require.NoError(t, err)
	require.Equal(t, []uint64{apple, cherry, banana}, listedIDs(res))

	res, err = listing.ListPublic(ctx, db.ListParams{Sort: consts.SortRandom})
	require.NoError(t, err)
	require.Equal(t, 3, res.Total)
	require.ElementsMatch(t, []uint64{apple, banana, cherry}, listedIDs(res))
}

func TestListingClampsHugePages(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	owner := insertUser(t, tx, "pager")
	siteID := insertSite(t, tx, "/far/", "Far", true)
	flag(t, tx, siteID, owner)

	res, err := repo.NewListingRepo(tx).ListPending(ctx, db.ListParams{Page: 1 << 62, PerPage: 20})
	require.NoError(t, err)
	require.Empty(t, res.Sites)
	require.Equal(t, 1, res.Total)

	res, err = repo.NewListingRepo(tx).ListPending(ctx, db.ListParams{Page: 1, PerPage: 1 << 62})
	require.NoError(t, err)
	require.Len(t, res.Sites, 1)
}

func TestListPublicExcludesArchivedAndUnrecorded(t *testing.T) {
	tx := begin(t)
	ctx := context.Background()

	owner := insertUser(t, tx, "publisher")
	visible := insertSite(t, tx, "/v/", "Visible", false)
	archived := insertSite(t, tx, "/h/", "Hidden", true)
	insertSite(t, tx, "/u/", "Unrecorded", false)
	sites := repo.NewSiteRepo(tx)
	require.NoError(t, sites.RecordSocialSite(ctx, visible, owner))
	require.NoError(t, sites.RecordSocialSite(ctx, archived, owner))

	res, err := repo.NewListingRepo(tx).ListPublic(ctx, db.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Equal(t, visible, res.Sites[0].SiteID)
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `50\% off\_now\\`, repo.EscapeLike(`50% off_now\`))
}
