package moderation

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	appconsts "github.com/Builder-Lawyers/site-moderation/internal/application/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
)

const flavourNouveau = "nouveau"

// ButtonArgs describes one action button of a pending row.
type ButtonArgs struct {
	ID            string
	Component     string
	Action        consts.ModerationAction
	SiteID        uint64
	LinkText      string
	LinkHref      string
	LinkClass     string
	WrapperClass  string
	ParentElement string
}

// Buttons returns the approve and decline buttons for a pending site, each
// carrying a one-time token for identity.
func (m *Moderator) Buttons(ctx context.Context, siteID uint64, identity *auth.Identity) ([]ButtonArgs, error) {
	if identity == nil || !identity.SuperAdmin {
		return nil, nil
	}
	buttons := make([]ButtonArgs, 0, 2)
	for _, action := range []consts.ModerationAction{consts.ActionApprove, consts.ActionDecline} {
		token, err := m.Nonces.Issue(ctx, nonceAction(action, siteID), identity.UserID)
		if err != nil {
			return nil, err
		}
		args := m.buttonArgs(action, siteID, token)
		if m.opts.ButtonArgs != nil {
			args = m.opts.ButtonArgs(args)
		}
		buttons = append(buttons, args)
	}
	return buttons, nil
}

func (m *Moderator) buttonArgs(action consts.ModerationAction, siteID uint64, token string) ButtonArgs {
	args := ButtonArgs{
		ID:           "sm-" + string(action),
		Component:    "sites",
		Action:       action,
		SiteID:       siteID,
		LinkText:     m.Translator.T("moderation.button." + string(action)),
		WrapperClass: "site-button",
		LinkClass:    "site-button",
	}
	if strings.EqualFold(m.Platform.ThemeFlavour, flavourNouveau) {
		args.ParentElement = "li"
		args.WrapperClass = ""
		args.LinkClass += " button"
	}
	if action == consts.ActionDecline {
		args.LinkClass += " confirm"
	}

	query := url.Values{}
	query.Set(appconsts.QuerySiteID, strconv.FormatUint(siteID, 10))
	if action == consts.ActionApprove {
		query.Set(appconsts.QueryApprove, token)
	} else {
		query.Set(appconsts.QueryDecline, token)
	}
	args.LinkHref = m.Platform.BaseURL() + "/moderation?" + query.Encode()
	return args
}
