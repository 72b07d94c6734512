package site_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/site"
	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/hooks"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/config"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
	"github.com/Builder-Lawyers/site-moderation/internal/testinfra"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

var platform = &config.PlatformConfig{Scheme: "https", MainDomain: "example.com", Multisite: true}

type commands struct {
	registry *hooks.Registry
	create   *site.CreateSite
	archive  *site.UpdateArchived
	remove   *site.DeleteSite
}

func setup(t *testing.T) *commands {
	t.Helper()
	testinfra.Reset(context.Background())
	factory := dbs.NewUoWFactory(testinfra.Pool)
	registry := hooks.NewRegistry()
	return &commands{
		registry: registry,
		create:   site.NewCreateSite(factory, registry, platform),
		archive:  site.NewUpdateArchived(factory, registry),
		remove:   site.NewDeleteSite(factory, registry),
	}
}

func insertUser(t *testing.T, username string, superAdmin bool) *auth.Identity {
	t.Helper()
	id := uuid.New()
	_, err := testinfra.Pool.Exec(context.Background(),
		"INSERT INTO platform.users(id, username, email, is_super_admin) VALUES ($1,$2,$3,$4)",
		id, username, username+"@example.com", superAdmin)
	require.NoError(t, err)
	return &auth.Identity{UserID: id, Username: username, SuperAdmin: superAdmin}
}

func count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, testinfra.Pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func TestCreateSiteStoresNameAndSocialRecord(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	user := insertUser(t, "maker", false)

	siteID, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: " Garden ", Title: "  My Garden "}, user)
	require.NoError(t, err)

	var domain, path, blogname, name string
	err = testinfra.Pool.QueryRow(ctx, `SELECT s.domain, s.path, o.option_value, m.meta_value FROM platform.sites s
		JOIN platform.site_options o ON o.site_id = s.id AND o.option_name = 'blogname'
		JOIN platform.site_meta m ON m.site_id = s.id AND m.meta_key = 'name'
		WHERE s.id = $1`, siteID).Scan(&domain, &path, &blogname, &name)
	require.NoError(t, err)
	require.Equal(t, "example.com", domain)
	require.Equal(t, "/garden/", path)
	require.Equal(t, "My Garden", blogname)
	require.Equal(t, "My Garden", name)
	require.Equal(t, 1, count(t, "SELECT COUNT(*) FROM platform.site_meta WHERE site_id = $1 AND meta_key = 'last_activity'", siteID))
	require.Equal(t, 1, count(t, "SELECT COUNT(*) FROM platform.social_sites WHERE site_id = $1 AND user_id = $2", siteID, user.UserID))
}

func TestCreateSiteNotifiesNetworkAdmin(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	_, err := testinfra.Pool.Exec(ctx, "UPDATE platform.network_options SET value = 'admin@example.com' WHERE name = 'admin_email'")
	require.NoError(t, err)
	user := insertUser(t, "notifier", false)

	_, err = c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "news", Title: "News"}, user)
	require.NoError(t, err)

	var payload []byte
	require.NoError(t, testinfra.Pool.QueryRow(ctx, "SELECT payload FROM platform.outbox").Scan(&payload))
	var event struct {
		To       string        `json:"to"`
		MailType mail.MailType `json:"mailType"`
		Subject  string        `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, "admin@example.com", event.To)
	require.Equal(t, mail.NewSite, event.MailType)
	require.Equal(t, "New Site Registration: https://example.com/news/", event.Subject)
}

func TestCreateSiteHooksCanReplaceDefaults(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	_, err := testinfra.Pool.Exec(ctx, "UPDATE platform.network_options SET value = 'admin@example.com' WHERE name = 'admin_email'")
	require.NoError(t, err)
	user := insertUser(t, "hooked", false)

	var seen hooks.SiteCreated
	c.registry.OnSiteCreated(func(_ context.Context, _ pgx.Tx, event *hooks.SiteCreated) error {
		seen = *event
		event.SkipSocialRecord = true
		event.SuppressAdminNotification = true
		return nil
	})

	siteID, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "quiet", Title: "Quiet"}, user)
	require.NoError(t, err)
	require.Equal(t, siteID, seen.SiteID)
	require.Equal(t, user.UserID, seen.CreatorID)
	require.Equal(t, user.UserID, seen.ActorID)
	require.Zero(t, count(t, "SELECT COUNT(*) FROM platform.social_sites"))
	require.Zero(t, count(t, "SELECT COUNT(*) FROM platform.outbox"))
}

func TestCreateSiteHookErrorRollsBack(t *testing.T) {
	c := setup(t)
	user := insertUser(t, "unlucky", false)
	boom := errors.New("boom")
	c.registry.OnSiteCreated(func(context.Context, pgx.Tx, *hooks.SiteCreated) error { return boom })

	_, err := c.create.Execute(context.Background(), &dto.CreateSiteRequest{Path: "gone", Title: "Gone"}, user)
	require.ErrorIs(t, err, boom)
	require.Zero(t, count(t, "SELECT COUNT(*) FROM platform.sites"))
}

func TestCreateSiteValidation(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	user := insertUser(t, "checker", false)

	_, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "x", Title: "X"}, nil)
	require.ErrorAs(t, err, &errs.PermissionsError{})

	_, err = c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "x", Title: "   "}, user)
	require.ErrorAs(t, err, &errs.ValidationError{})

	_, err = c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "x", Title: "X"}, user)
	require.NoError(t, err)
	_, err = c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "/X/", Title: "X again"}, user)
	require.ErrorAs(t, err, &errs.ConflictError{})

	unknown := uuid.New()
	_, err = c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "y", Title: "Y"}, &auth.Identity{UserID: unknown})
	require.ErrorAs(t, err, &errs.NotFoundError{})
}

func TestCreateSiteRejectsUnsafeInput(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	user := insertUser(t, "mallory", false)

	for _, title := range []string{"Garden\r\nBcc: victim@evil.test", "Tab\there", "Bell\a"} {
		_, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "garden", Title: title}, user)
		var invalid errs.ValidationError
		require.ErrorAs(t, err, &invalid, title)
		require.Equal(t, "title", invalid.Field)
	}

	for _, path := range []string{"sites", "/Register/", "logout", "api", "moderation", "network/extra"} {
		_, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: path, Title: "Shadow"}, user)
		var invalid errs.ValidationError
		require.ErrorAs(t, err, &invalid, path)
		require.Equal(t, "path", invalid.Field)
	}
	require.Zero(t, count(t, "SELECT COUNT(*) FROM platform.sites"))

	_, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "sites-of-mine", Title: "Mine"}, user)
	require.NoError(t, err)
}

func TestIsReservedPath(t *testing.T) {
	require.True(t, site.IsReservedPath("/sites/"))
	require.True(t, site.IsReservedPath(site.NormalizePath("API")))
	require.False(t, site.IsReservedPath("/"))
	require.False(t, site.IsReservedPath("/garden/"))
	require.False(t, site.IsReservedPath("/sitesx/"))
}

func TestUpdateArchivedFiresHookOnlyWhenUnarchiving(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	user := insertUser(t, "archivist", false)
	siteID, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "box", Title: "Box"}, user)
	require.NoError(t, err)

	var fired []uint64
	c.registry.OnSiteUnarchived(func(_ context.Context, _ pgx.Tx, event *hooks.SiteUnarchived) error {
		fired = append(fired, event.SiteID)
		return nil
	})

	require.NoError(t, c.archive.Execute(ctx, siteID, true, uuid.Nil))
	require.Empty(t, fired)
	require.NoError(t, c.archive.Execute(ctx, siteID, false, uuid.Nil))
	require.Equal(t, []uint64{siteID}, fired)

	err = c.archive.Execute(ctx, siteID+100, false, uuid.Nil)
	require.ErrorAs(t, err, &errs.NotFoundError{})
}

func TestDeleteSiteSoftAndHard(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	user := insertUser(t, "remover", false)
	soft, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "soft", Title: "Soft"}, user)
	require.NoError(t, err)
	hard, err := c.create.Execute(ctx, &dto.CreateSiteRequest{Path: "hard", Title: "Hard"}, user)
	require.NoError(t, err)

	var names []string
	c.registry.OnSiteDeleting(func(ctx context.Context, tx pgx.Tx, event *hooks.SiteDeleting) error {
		var name string
		err := tx.QueryRow(ctx, "SELECT option_value FROM platform.site_options WHERE site_id = $1 AND option_name = 'blogname'", event.SiteID).Scan(&name)
		names = append(names, name)
		return err
	})

	require.NoError(t, c.remove.Execute(ctx, soft, false))
	require.Equal(t, 1, count(t, "SELECT COUNT(*) FROM platform.sites WHERE id = $1 AND deleted", soft))
	require.Zero(t, count(t, "SELECT COUNT(*) FROM platform.outbox"))

	require.NoError(t, c.remove.Execute(ctx, hard, true))
	require.Zero(t, count(t, "SELECT COUNT(*) FROM platform.sites WHERE id = $1", hard))
	require.Zero(t, count(t, "SELECT COUNT(*) FROM platform.site_meta WHERE site_id = $1", hard))
	require.Equal(t, 1, count(t, "SELECT COUNT(*) FROM platform.outbox WHERE event = 'PurgeSiteFiles'"))
	require.Equal(t, []string{"Soft", "Hard"}, names)

	err = c.remove.Execute(ctx, hard, true)
	require.ErrorAs(t, err, &errs.NotFoundError{})
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":         "/",
		"/":        "/",
		"blog":     "/blog/",
		"/Blog/":   "/blog/",
		"  news  ": "/news/",
	}
	for in, want := range cases {
		require.Equal(t, want, site.NormalizePath(in), in)
	}
}

type options map[string]string

func (o options) GetNetworkOption(_ context.Context, name string) (string, error) {
	return o[name], nil
}

func TestAdminRecipient(t *testing.T) {
	ctx := context.Background()

	to, ok, err := site.AdminRecipient(ctx, options{"registration_notification": "yes", "admin_email": "root@example.com"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "root@example.com", to)

	_, ok, err = site.AdminRecipient(ctx, options{"registration_notification": "no", "admin_email": "root@example.com"})
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = site.AdminRecipient(ctx, options{"registration_notification": "yes", "admin_email": "root"})
	require.NoError(t, err)
	require.False(t, ok)
}
