package application

import (
	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/moderation"
	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/site"
	"github.com/Builder-Lawyers/site-moderation/internal/application/processors"
	"github.com/Builder-Lawyers/site-moderation/internal/application/query"
)

type Handlers struct {
	CreateSite       *site.CreateSite
	UpdateArchived   *site.UpdateArchived
	DeleteSite       *site.DeleteSite
	GetSite          *query.GetSite
	ListSites        *query.ListSites
	GetSiteByAddress *query.GetSiteByAddress
	GetIdentity      *query.GetIdentity
	Moderation       *moderation.Moderator
}

type Processors struct {
	SendMail       *processors.SendMail
	PurgeSiteFiles *processors.PurgeSiteFiles
}
