package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
)

// Review approves or declines a pending site. Requests that fail a
// precondition change nothing and return an empty result.
func (m *Moderator) Review(ctx context.Context, req dto.ReviewRequest, identity *auth.Identity) (dto.ReviewResult, error) {
	var none dto.ReviewResult
	if !m.active || identity == nil || !identity.SuperAdmin || req.SiteID == 0 {
		slog.Debug("moderation request ignored", "siteID", req.SiteID)
		return none, nil
	}

	var action consts.ModerationAction
	var token string
	switch {
	case req.Approve != "":
		action, token = consts.ActionApprove, req.Approve
	case req.Decline != "":
		action, token = consts.ActionDecline, req.Decline
	default:
		return none, nil
	}

	valid, err := m.Nonces.Consume(ctx, token, nonceAction(action, req.SiteID), identity.UserID)
	if err != nil {
		return none, err
	}
	if !valid {
		slog.Debug("moderation token rejected", "siteID", req.SiteID, "action", action)
		return none, nil
	}

	name, err := m.siteName(ctx, req.SiteID)
	if err != nil {
		if errors.As(err, &errs.NotFoundError{}) {
			return none, nil
		}
		return none, err
	}

	switch action {
	case consts.ActionApprove:
		if err = m.Archiver.Execute(ctx, req.SiteID, false, identity.UserID); err != nil {
			return none, err
		}
		slog.Info("site approved by super admin", "siteID", req.SiteID, "by", identity.UserID)
		return dto.ReviewResult{Action: action, Message: m.Translator.T("moderation.approved", name)}, nil
	default:
		if err = m.Deleter.Execute(ctx, req.SiteID, true); err != nil {
			return none, err
		}
		slog.Info("site declined by super admin", "siteID", req.SiteID, "by", identity.UserID)
		return dto.ReviewResult{Action: action, Message: m.Translator.T("moderation.deleted", name)}, nil
	}
}

func (m *Moderator) siteName(ctx context.Context, siteID uint64) (name string, err error) {
	uow := m.UOWFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return "", err
	}
	defer uow.Finalize(&err)

	s, err := repo.NewSiteRepo(tx).GetSite(ctx, siteID)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

// nonceAction binds a one-time token to the action and the site it was
// rendered for.
func nonceAction(action consts.ModerationAction, siteID uint64) string {
	return fmt.Sprintf("site_moderation_%s_%d", action, siteID)
}
