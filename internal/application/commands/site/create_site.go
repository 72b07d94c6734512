package site

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/application/hooks"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/config"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateSite struct {
	uowFactory *dbs.UOWFactory
	hooks      *hooks.Registry
	cfg        *config.PlatformConfig
}

func NewCreateSite(uowFactory *dbs.UOWFactory, hooks *hooks.Registry, cfg *config.PlatformConfig) *CreateSite {
	return &CreateSite{uowFactory: uowFactory, hooks: hooks, cfg: cfg}
}

func (c *CreateSite) Execute(ctx context.Context, req *dto.CreateSiteRequest, identity *auth.Identity) (siteID uint64, err error) {
	if identity == nil {
		return 0, errs.PermissionsError{Err: auth.ErrNoSession}
	}
	creatorID := identity.UserID
	if req.UserID != nil && *req.UserID != identity.UserID {
		if !identity.SuperAdmin {
			return 0, errs.PermissionsError{Err: fmt.Errorf("only super admins can create sites for other users")}
		}
		creatorID = *req.UserID
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return 0, errs.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.IndexFunc(title, unicode.IsControl) >= 0 {
		return 0, errs.ValidationError{Field: "title", Reason: "must not contain control characters"}
	}
	path := NormalizePath(req.Path)
	if IsReservedPath(path) {
		return 0, errs.ValidationError{Field: "path", Reason: fmt.Sprintf("%q is reserved", strings.Trim(path, "/"))}
	}
	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	if domain == "" {
		domain = c.cfg.MainDomain
	}
	site := &entity.Site{
		Domain: domain,
		Path:   path,
		Name:   title,
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return 0, err
	}
	defer uow.Finalize(&err)

	creator, err := repo.NewUserRepo(tx).GetUser(ctx, creatorID)
	if err != nil {
		return 0, err
	}

	sites := repo.NewSiteRepo(tx)
	siteID, err = sites.InsertSite(ctx, site)
	if err != nil {
		return 0, err
	}
	meta := repo.NewMetaRepo(tx)
	if err = meta.UpdateOption(ctx, siteID, consts.OptionBlogname, title); err != nil {
		return 0, err
	}
	if err = meta.UpdateMeta(ctx, siteID, consts.MetaName, title); err != nil {
		return 0, err
	}
	if err = sites.TouchActivity(ctx, siteID); err != nil {
		return 0, err
	}

	event := &hooks.SiteCreated{
		SiteID:    siteID,
		CreatorID: creatorID,
		ActorID:   identity.UserID,
	}
	if err = c.hooks.FireSiteCreated(ctx, tx, event); err != nil {
		return 0, err
	}

	if !event.SkipSocialRecord {
		if err = RecordSocialSite(ctx, tx, siteID, creatorID); err != nil {
			return 0, err
		}
	}
	if !event.SuppressAdminNotification {
		if err = c.notifyAdmin(ctx, tx, site, creator); err != nil {
			return 0, err
		}
	}

	return siteID, nil
}

func (c *CreateSite) notifyAdmin(ctx context.Context, tx pgx.Tx, site *entity.Site, creator *entity.User) error {
	to, ok, err := AdminRecipient(ctx, repo.NewMetaRepo(tx))
	if err != nil || !ok {
		return err
	}
	sendMail, err := events.NewSendMail("", to, mail.NewSiteData{
		SiteName:    site.Name,
		SiteURL:     site.HomeURL(c.cfg.Scheme),
		Username:    creator.Username,
		SettingsURL: c.cfg.NetworkAdminURL("settings"),
	})
	if err != nil {
		return fmt.Errorf("error creating mail event, %v", err)
	}
	return repo.NewEventRepo(tx).InsertEvent(ctx, sendMail)
}

// NetworkOptions is the read side of the installation options store.
type NetworkOptions interface {
	GetNetworkOption(ctx context.Context, name string) (string, error)
}

// AdminRecipient returns the network admin address when registration
// notifications are enabled and the address is valid.
func AdminRecipient(ctx context.Context, options NetworkOptions) (string, bool, error) {
	notify, err := options.GetNetworkOption(ctx, consts.NetworkRegistrationNotification)
	if err != nil {
		return "", false, err
	}
	if notify != "yes" {
		return "", false, nil
	}
	email, err := options.GetNetworkOption(ctx, consts.NetworkAdminEmail)
	if err != nil {
		return "", false, err
	}
	if !mail.IsEmail(email) {
		return "", false, nil
	}
	return email, true, nil
}

// RecordSocialSite adds the site to the social layer so it shows up in the
// public directory.
func RecordSocialSite(ctx context.Context, tx pgx.Tx, siteID uint64, userID uuid.UUID) error {
	return repo.NewSiteRepo(tx).RecordSocialSite(ctx, siteID, userID)
}

// IsReservedPath reports whether the first segment of path is one of the
// platform's own routes.
func IsReservedPath(path string) bool {
	segment, _, _ := strings.Cut(strings.Trim(path, "/"), "/")
	return slices.Contains(consts.ReservedPaths, strings.ToLower(segment))
}

// NormalizePath returns "/" for the root site and "/name/" otherwise.
func NormalizePath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "/"
	}
	return "/" + strings.ToLower(path) + "/"
}
