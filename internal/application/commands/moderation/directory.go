package moderation

import (
	"context"
	"html/template"

	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/i18n"
)

type ScopeDecision int

const (
	// ScopeIgnored leaves the directory request untouched.
	ScopeIgnored ScopeDecision = iota
	// ScopeRedirect sends the visitor back to the directory root.
	ScopeRedirect
	// ScopePending renders the pending queue.
	ScopePending
)

// ResolveScope decides what a directory request for scope turns into.
func (m *Moderator) ResolveScope(scope string, identity *auth.Identity) ScopeDecision {
	if !m.active || scope != m.slug || identity == nil {
		return ScopeIgnored
	}
	if !identity.SuperAdmin {
		return ScopeRedirect
	}
	return ScopePending
}

// ShowPendingTab reports whether the directory shows the pending tab.
func (m *Moderator) ShowPendingTab(identity *auth.Identity) bool {
	return m.active && identity != nil && identity.SuperAdmin
}

// LogoutScope returns the scope cookie value to store at logout. ok is false
// when the cookie can stay as it is.
func (m *Moderator) LogoutScope(current string) (string, bool) {
	if !m.active || current == "" || current != m.slug {
		return "", false
	}
	return consts.ScopeAll, true
}

// PendingDirectory lists every pending site, whoever created it.
func (m *Moderator) PendingDirectory(ctx context.Context, req dto.DirectoryRequest, identity *auth.Identity) (result *db.ListResult, err error) {
	if identity == nil || !identity.SuperAdmin {
		return nil, errs.PermissionsError{Err: auth.ErrNoSession}
	}
	params := req.ListParams()
	params.UserID = nil

	uow := m.UOWFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	return repo.NewListingRepo(tx).ListPending(ctx, params)
}

// Blocks reports whether the visitor must be turned away from the site.
func (m *Moderator) Blocks(ctx context.Context, siteID uint64, identity *auth.Identity) (bool, error) {
	if !m.active || (identity != nil && identity.SuperAdmin) {
		return false, nil
	}
	return m.IsPending(ctx, siteID)
}

// RegistrationTranslator replaces the confirmation strings of the site
// registration page. Replacements are HTML.
func (m *Moderator) RegistrationTranslator(base i18n.Translator, username string) i18n.Translator {
	if !m.active {
		return base
	}
	return i18n.WithOverride(base, func(key string, args ...any) (string, bool) {
		switch key {
		case "registration.success.heading":
			return m.Translator.T("moderation.registration.heading"), true
		case "registration.success.new_site":
			return m.Translator.T("moderation.registration.submitted",
				htmlEscape(m.Platform.ProfileURL(username)),
				htmlEscape(m.Platform.ActivityURL())), true
		case "registration.success.login":
			return "", true
		}
		return "", false
	})
}

func htmlEscape(s string) string {
	return template.HTMLEscapeString(s)
}
