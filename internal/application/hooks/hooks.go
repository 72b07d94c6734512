package hooks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SiteCreated is fired after the site row, its name and its options exist.
// Hooks may flip the switches to replace what the platform does next.
type SiteCreated struct {
	SiteID    uint64
	CreatorID uuid.UUID
	ActorID   uuid.UUID

	SuppressAdminNotification bool
	SkipSocialRecord          bool
}

// SiteUnarchived carries the user who unarchived the site. ActorID is
// uuid.Nil for system updates.
type SiteUnarchived struct {
	SiteID  uint64
	ActorID uuid.UUID
}

// SiteDeleting is fired before any row of the site is removed.
type SiteDeleting struct {
	SiteID uint64
	Drop   bool
}

type (
	SiteCreatedHook    func(ctx context.Context, tx pgx.Tx, event *SiteCreated) error
	SiteUnarchivedHook func(ctx context.Context, tx pgx.Tx, event *SiteUnarchived) error
	SiteDeletingHook   func(ctx context.Context, tx pgx.Tx, event *SiteDeleting) error
)

// Registry holds lifecycle callbacks. Registration happens at startup,
// before any request is served, so no locking is needed.
type Registry struct {
	siteCreated    []SiteCreatedHook
	siteUnarchived []SiteUnarchivedHook
	siteDeleting   []SiteDeletingHook
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) OnSiteCreated(hook SiteCreatedHook) {
	r.siteCreated = append(r.siteCreated, hook)
}

func (r *Registry) OnSiteUnarchived(hook SiteUnarchivedHook) {
	r.siteUnarchived = append(r.siteUnarchived, hook)
}

func (r *Registry) OnSiteDeleting(hook SiteDeletingHook) {
	r.siteDeleting = append(r.siteDeleting, hook)
}

func (r *Registry) FireSiteCreated(ctx context.Context, tx pgx.Tx, event *SiteCreated) error {
	for _, hook := range r.siteCreated {
		if err := hook(ctx, tx, event); err != nil {
			return fmt.Errorf("site created hook, %w", err)
		}
	}
	return nil
}

func (r *Registry) FireSiteUnarchived(ctx context.Context, tx pgx.Tx, event *SiteUnarchived) error {
	for _, hook := range r.siteUnarchived {
		if err := hook(ctx, tx, event); err != nil {
			return fmt.Errorf("site unarchived hook, %w", err)
		}
	}
	return nil
}

func (r *Registry) FireSiteDeleting(ctx context.Context, tx pgx.Tx, event *SiteDeleting) error {
	for _, hook := range r.siteDeleting {
		if err := hook(ctx, tx, event); err != nil {
			return fmt.Errorf("site deleting hook, %w", err)
		}
	}
	return nil
}
