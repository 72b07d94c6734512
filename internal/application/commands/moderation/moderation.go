package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Builder-Lawyers/site-moderation/internal/application/hooks"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/config"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/i18n"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
	"github.com/google/uuid"
)

// Archiver and Deleter are the platform's site commands. They run the
// lifecycle hooks this module registers.
type Archiver interface {
	Execute(ctx context.Context, siteID uint64, archived bool, actorID uuid.UUID) error
}

type Deleter interface {
	Execute(ctx context.Context, siteID uint64, drop bool) error
}

type Nonces interface {
	Issue(ctx context.Context, action string, userID uuid.UUID) (string, error)
	Consume(ctx context.Context, token, action string, userID uuid.UUID) (bool, error)
}

type Deps struct {
	UOWFactory *dbs.UOWFactory
	Platform   *config.PlatformConfig
	Nonces     Nonces
	Archiver   Archiver
	Deleter    Deleter
	Translator i18n.Translator
}

type Options struct {
	// OnLoaded runs once after the module registered its hooks.
	OnLoaded []func(m *Moderator)
	// DeclineEmail can veto the mail sent to the creator of a declined site.
	DeclineEmail func(ctx context.Context, siteID uint64, creatorID uuid.UUID) bool
	// ButtonArgs can rewrite the approve and decline buttons before rendering.
	ButtonArgs func(args ButtonArgs) ButtonArgs
}

// Moderator holds new sites created by regular users in a pending queue
// until a super admin approves or declines them.
type Moderator struct {
	Deps
	slug   string
	opts   Options
	active bool
}

func New(deps Deps, cfg *config.ModerationConfig, opts Options) *Moderator {
	slug := config.SanitizeTitle(cfg.Slug)
	if slug == "" {
		slug = consts.DefaultModerationScope
	}
	return &Moderator{Deps: deps, slug: slug, opts: opts}
}

// Register wires the module into the platform lifecycle. It does nothing
// unless the platform runs as a network with the sites component enabled.
func (m *Moderator) Register(registry *hooks.Registry) bool {
	if m.active {
		return true
	}
	if !m.Platform.Multisite {
		slog.Info("site moderation disabled, platform is not a network")
		return false
	}
	if !m.Platform.ComponentActive("sites") {
		slog.Info("site moderation disabled, sites component is inactive")
		return false
	}

	registry.OnSiteCreated(m.autoarchive)
	registry.OnSiteUnarchived(m.onApproval)
	registry.OnSiteDeleting(m.onDelete)
	m.active = true

	for _, loaded := range m.opts.OnLoaded {
		loaded(m)
	}
	slog.Info("site moderation registered", "scope", m.slug)
	return true
}

func (m *Moderator) Active() bool {
	return m.active
}

// Slug is the directory scope of the pending queue.
func (m *Moderator) Slug() string {
	return m.slug
}

func (m *Moderator) PendingURL() string {
	return m.Platform.DirectoryURL() + m.slug + "/"
}

func (m *Moderator) IsPending(ctx context.Context, siteID uint64) (pending bool, err error) {
	uow := m.UOWFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return false, err
	}
	defer uow.Finalize(&err)

	_, pending, err = creatorID(ctx, repo.NewMetaRepo(tx), siteID)
	return pending, err
}

// CreatorID returns the user who created a pending site. ok is false when
// the site is not pending.
func (m *Moderator) CreatorID(ctx context.Context, siteID uint64) (userID uuid.UUID, ok bool, err error) {
	uow := m.UOWFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return uuid.Nil, false, err
	}
	defer uow.Finalize(&err)

	return creatorID(ctx, repo.NewMetaRepo(tx), siteID)
}

type optionReader interface {
	GetOption(ctx context.Context, siteID uint64, name string) (string, error)
}

// creatorID reads the pending flag from the site's options. A flag that does
// not hold a user ID still marks the site pending.
func creatorID(ctx context.Context, options optionReader, siteID uint64) (uuid.UUID, bool, error) {
	value, err := options.GetOption(ctx, siteID, consts.ModerationKey)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("err reading moderation flag, %v", err)
	}
	if value == "" {
		return uuid.Nil, false, nil
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		slog.Warn("moderation flag holds no user id", "siteID", siteID, "value", value)
		return uuid.Nil, true, nil
	}
	return userID, true, nil
}
