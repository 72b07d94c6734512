package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/site"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/application/hooks"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// autoarchive puts a site created by a regular user into the pending queue.
func (m *Moderator) autoarchive(ctx context.Context, tx pgx.Tx, event *hooks.SiteCreated) error {
	users := repo.NewUserRepo(tx)
	creator, err := users.GetUser(ctx, event.CreatorID)
	if err != nil {
		return err
	}
	if creator.SuperAdmin {
		return nil
	}
	if event.ActorID != uuid.Nil && event.ActorID != event.CreatorID {
		actor, err := users.GetUser(ctx, event.ActorID)
		if err != nil {
			return err
		}
		if actor.SuperAdmin {
			return nil
		}
	}

	sites := repo.NewSiteRepo(tx)
	if err = sites.SetArchived(ctx, event.SiteID, true); err != nil {
		return err
	}
	meta := repo.NewMetaRepo(tx)
	flag := creator.ID.String()
	if err = meta.UpdateMeta(ctx, event.SiteID, consts.ModerationKey, flag); err != nil {
		return err
	}
	if err = meta.UpdateOption(ctx, event.SiteID, consts.ModerationKey, flag); err != nil {
		return err
	}

	event.SkipSocialRecord = true
	event.SuppressAdminNotification = true
	slog.Info("site added to moderation queue", "siteID", event.SiteID, "creator", creator.Username)

	to, ok, err := site.AdminRecipient(ctx, meta)
	if err != nil || !ok {
		return err
	}
	pending, err := sites.GetSite(ctx, event.SiteID)
	if err != nil {
		return err
	}
	return m.enqueueMail(ctx, tx, "", to, mail.SitePendingData{
		SiteName:        pending.Name,
		SiteURL:         pending.HomeURL(m.Platform.Scheme),
		Username:        creator.Username,
		ProfileURL:      m.Platform.ProfileURL(creator.Username),
		PendingURL:      m.PendingURL(),
		NetworkSitesURL: m.Platform.NetworkAdminURL("sites"),
		SettingsURL:     m.Platform.NetworkAdminURL("settings"),
	})
}

// onApproval clears the pending flag of an unarchived site, records it in
// the social layer and tells the creator. A site whose creator is unknown is
// recorded under the approving user.
func (m *Moderator) onApproval(ctx context.Context, tx pgx.Tx, event *hooks.SiteUnarchived) error {
	meta := repo.NewMetaRepo(tx)
	userID, pending, err := creatorID(ctx, meta, event.SiteID)
	if err != nil || !pending {
		return err
	}

	if err = meta.DeleteMeta(ctx, event.SiteID, consts.ModerationKey); err != nil {
		return err
	}
	if err = meta.DeleteOption(ctx, event.SiteID, consts.ModerationKey); err != nil {
		return err
	}

	creator, approved, err := m.creatorAndSite(ctx, tx, userID, event.SiteID)
	if err != nil {
		return err
	}
	if creator == nil {
		if event.ActorID == uuid.Nil {
			slog.Warn("approved site has no owner to record", "siteID", event.SiteID)
			return nil
		}
		return site.RecordSocialSite(ctx, tx, event.SiteID, event.ActorID)
	}
	if err = site.RecordSocialSite(ctx, tx, event.SiteID, creator.ID); err != nil {
		return err
	}
	slog.Info("site approved", "siteID", event.SiteID, "creator", creator.Username)

	if creator.Spammer {
		return nil
	}
	return m.enqueueMail(ctx, tx, creator.ID.String(), "", mail.SiteApprovedData{
		DisplayName: creator.DisplayName,
		SiteName:    approved.Name,
		AdminURL:    approved.AdminURL(m.Platform.Scheme),
	})
}

// onDelete tells the creator of a pending site that it was declined.
func (m *Moderator) onDelete(ctx context.Context, tx pgx.Tx, event *hooks.SiteDeleting) error {
	userID, pending, err := creatorID(ctx, repo.NewMetaRepo(tx), event.SiteID)
	if err != nil || !pending {
		return err
	}

	creator, declined, err := m.creatorAndSite(ctx, tx, userID, event.SiteID)
	if err != nil || creator == nil {
		return err
	}
	if creator.Spammer {
		return nil
	}
	if m.opts.DeclineEmail != nil && !m.opts.DeclineEmail(ctx, event.SiteID, creator.ID) {
		slog.Debug("decline mail vetoed", "siteID", event.SiteID)
		return nil
	}
	return m.enqueueMail(ctx, tx, creator.ID.String(), "", mail.SiteDeclinedData{
		DisplayName: creator.DisplayName,
		SiteName:    declined.Name,
		SiteURL:     declined.HomeURL(m.Platform.Scheme),
	})
}

// creatorAndSite returns a nil user when the creator is unknown.
func (m *Moderator) creatorAndSite(ctx context.Context, tx pgx.Tx, userID uuid.UUID, siteID uint64) (*entity.User, *entity.Site, error) {
	if userID == uuid.Nil {
		return nil, nil, nil
	}
	creator, err := repo.NewUserRepo(tx).GetUser(ctx, userID)
	if err != nil {
		if errors.As(err, &errs.NotFoundError{}) {
			slog.Warn("creator of pending site is gone", "siteID", siteID, "userID", userID)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	s, err := repo.NewSiteRepo(tx).GetSite(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}
	return creator, s, nil
}

func (m *Moderator) enqueueMail(ctx context.Context, tx pgx.Tx, userID, to string, data mail.MailData) error {
	sendMail, err := events.NewSendMail(userID, to, data)
	if err != nil {
		return fmt.Errorf("error creating mail event, %v", err)
	}
	return repo.NewEventRepo(tx).InsertEvent(ctx, sendMail)
}
