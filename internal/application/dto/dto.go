package dto

import (
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateSiteRequest struct {
	Domain string `json:"domain" form:"domain"`
	Path   string `json:"path" form:"path"`
	Title  string `json:"title" form:"title"`
	// UserID lets a super admin create a site on behalf of another user.
	UserID *uuid.UUID `json:"userID,omitempty" form:"-"`
}

type CreateSiteResponse struct {
	SiteID uint64 `json:"siteID"`
}

type UpdateSiteRequest struct {
	Archived *bool `json:"archived"`
}

type UpdateSiteResponse struct {
	SiteID   uint64 `json:"siteID"`
	Archived bool   `json:"archived"`
}

type ReviewRequest struct {
	SiteID  uint64
	Approve string
	Decline string
}

// ReviewResult carries the flash message of a successful moderation action.
// An empty message means nothing was done.
type ReviewResult struct {
	Action  consts.ModerationAction
	Message string
}

type DirectoryRequest struct {
	Sort    consts.SortType
	Page    int
	PerPage int
	Search  string
}

func (r DirectoryRequest) ListParams() db.ListParams {
	return db.ListParams{
		Sort:    r.Sort,
		Page:    r.Page,
		PerPage: r.PerPage,
		Search:  r.Search,
	}
}
