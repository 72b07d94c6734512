package rest

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/moderation"
	appconsts "github.com/Builder-Lawyers/site-moderation/internal/application/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db/repo"
	"github.com/gofiber/fiber/v2"
)

// directoryView is everything one directory page renders. It is built per
// request; whether the pending queue is shown is decided before any row is.
type directoryView struct {
	Title             string
	Tabs              []tabView
	FormAction        string
	Search            string
	SearchPlaceholder string
	Sorts             []sortOption
	Notice            string
	Count             string
	Rows              []siteRowView
	Empty             string
	PrevURL           string
	NextURL           string

	pending  bool
	basePath string
	request  dto.DirectoryRequest
}

type tabView struct {
	ID       string
	Label    string
	URL      string
	Selected bool
}

type sortOption struct {
	Value    consts.SortType
	Label    string
	Selected bool
}

type siteRowView struct {
	SiteID     uint64
	Name       string
	Initial    string
	URL        string
	ShowURL    bool
	TitleLink  string
	AvatarLink string
	LastActive string
	CreatedBy  template.HTML
	Buttons    []buttonView
}

type buttonView struct {
	ID            string
	SiteID        uint64
	ParentElement string
	WrapperClass  string
	Href          string
	Class         string
	Text          string
}

// Directory serves the sites directory. The moderation scope turns it into
// the pending queue for super admins.
func (s *Server) Directory(c *fiber.Ctx) error {
	identity := identityFrom(c)
	mod := s.handlers.Moderation
	pending := false

	if scope := c.Params("scope"); scope != "" {
		switch mod.ResolveScope(scope, identity) {
		case moderation.ScopeRedirect:
			return c.Redirect("/sites/", fiber.StatusFound)
		case moderation.ScopePending:
			c.Cookie(&fiber.Cookie{Name: appconsts.CookieScope, Value: mod.Slug(), Path: "/"})
			c.Cookie(&fiber.Cookie{Name: appconsts.CookieFilter, Value: string(consts.SortActive), Path: "/"})
			pending = true
		}
	} else if c.Cookies(appconsts.CookieScope) == mod.Slug() && mod.ShowPendingTab(identity) {
		pending = true
	}

	view := s.newDirectoryView(c, pending, identity)
	if err := s.fillRows(c.UserContext(), view, identity); err != nil {
		return jsonError(c, err)
	}
	return s.render(c, fiber.StatusOK, "directory", view)
}

func (s *Server) newDirectoryView(c *fiber.Ctx, pending bool, identity *auth.Identity) *directoryView {
	mod := s.handlers.Moderation
	sortValue := c.Query("type")
	if sortValue == "" && !pending {
		sortValue = c.Cookies(appconsts.CookieFilter)
	}
	req := dto.DirectoryRequest{
		Sort:    consts.ParseSortType(sortValue),
		Page:    max(c.QueryInt("page", 1), 1),
		PerPage: c.QueryInt("per_page", appconsts.DefaultPerPage),
		Search:  strings.TrimSpace(c.Query("search")),
	}
	if req.PerPage <= 0 {
		req.PerPage = appconsts.DefaultPerPage
	}
	req.PerPage = min(req.PerPage, db.MaxPerPage)
	req.Page = min(req.Page, db.MaxPage)

	view := &directoryView{
		Title:             s.tr.T("directory.title"),
		Search:            req.Search,
		SearchPlaceholder: s.tr.T("directory.search.placeholder"),
		Notice:            readFlash(c),
		Empty:             s.tr.T("directory.empty"),
		pending:           pending,
		basePath:          "/sites/",
		request:           req,
	}
	if pending {
		view.basePath = "/sites/" + mod.Slug() + "/"
	}
	view.FormAction = view.basePath

	view.Tabs = append(view.Tabs, tabView{ID: consts.ScopeAll, Label: s.tr.T("directory.tab.all"), URL: "/sites/", Selected: !pending})
	if mod.ShowPendingTab(identity) {
		view.Tabs = append(view.Tabs, tabView{
			ID:       mod.Slug(),
			Label:    s.tr.T("moderation.tab.pending"),
			URL:      "/sites/" + mod.Slug() + "/",
			Selected: pending,
		})
	}
	for _, sort := range []consts.SortType{consts.SortActive, consts.SortNewest, consts.SortAlphabetical, consts.SortRandom} {
		view.Sorts = append(view.Sorts, sortOption{
			Value:    sort,
			Label:    s.tr.T("directory.sort." + string(sort)),
			Selected: sort == req.Sort,
		})
	}
	return view
}

func (s *Server) fillRows(ctx context.Context, view *directoryView, identity *auth.Identity) error {
	var (
		result *db.ListResult
		err    error
	)
	if view.pending {
		result, err = s.handlers.Moderation.PendingDirectory(ctx, view.request, identity)
	} else {
		result, err = s.handlers.ListSites.Query(ctx, view.request)
	}
	if err != nil {
		return err
	}

	for _, listed := range result.Sites {
		row, err := s.rowView(ctx, view.pending, listed, identity)
		if err != nil {
			return err
		}
		view.Rows = append(view.Rows, row)
	}
	view.Count = s.tr.T("directory.count", len(view.Rows), result.Total)

	page, perPage := view.request.Page, view.request.PerPage
	if page > 1 {
		view.PrevURL = view.pageURL(page - 1)
	}
	if page*perPage < result.Total {
		view.NextURL = view.pageURL(page + 1)
	}
	return nil
}

func (s *Server) rowView(ctx context.Context, pending bool, listed db.ListedSite, identity *auth.Identity) (siteRowView, error) {
	site := entity.Site{ID: listed.SiteID, Domain: listed.Domain, Path: listed.Path, Name: listed.Name}
	home := site.HomeURL(s.platform.Scheme)
	row := siteRowView{
		SiteID:     listed.SiteID,
		Name:       listed.Name,
		Initial:    initial(listed.Name),
		URL:        home,
		TitleLink:  home,
		AvatarLink: home,
		LastActive: s.lastActive(listed.LastActivity),
	}
	if !pending {
		row.Buttons = []buttonView{{
			ID:     "visit",
			SiteID: listed.SiteID,
			Href:   home,
			Class:  "site-button visit",
			Text:   s.tr.T("directory.visit"),
		}}
		return row, nil
	}

	profile := s.platform.ProfileURL(listed.AdminUsername)
	row.ShowURL = true
	row.AvatarLink = profile
	row.TitleLink = s.platform.NetworkAdminURL("site-info?id=" + strconv.FormatUint(listed.SiteID, 10))
	row.CreatedBy = template.HTML(s.tr.T("moderation.created_by", fmt.Sprintf(`<a href="%s">%s</a>`,
		template.HTMLEscapeString(profile), template.HTMLEscapeString(listed.AdminUsername))))

	buttons, err := s.handlers.Moderation.Buttons(ctx, listed.SiteID, identity)
	if err != nil {
		return row, err
	}
	for _, b := range buttons {
		row.Buttons = append(row.Buttons, buttonView{
			ID:            b.ID,
			SiteID:        b.SiteID,
			ParentElement: b.ParentElement,
			WrapperClass:  b.WrapperClass,
			Href:          b.LinkHref,
			Class:         b.LinkClass,
			Text:          b.LinkText,
		})
	}
	return row, nil
}

func (v *directoryView) pageURL(page int) string {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if v.request.PerPage != appconsts.DefaultPerPage {
		query.Set("per_page", strconv.Itoa(v.request.PerPage))
	}
	if v.request.Search != "" {
		query.Set("search", v.request.Search)
	}
	if v.request.Sort != consts.SortActive {
		query.Set("type", string(v.request.Sort))
	}
	return v.basePath + "?" + query.Encode()
}

func (s *Server) lastActive(value string) string {
	at, err := time.Parse(repo.ActivityLayout, value)
	if err != nil {
		return ""
	}
	return s.tr.T("directory.last_active", at.Format("January 2, 2006"))
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// setFlash stores a one-shot notice shown on the next directory render.
func setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{Name: appconsts.CookieMessage, Value: url.QueryEscape(message), Path: "/", HTTPOnly: true})
}

func readFlash(c *fiber.Ctx) string {
	raw := c.Cookies(appconsts.CookieMessage)
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{Name: appconsts.CookieMessage, Value: "", Path: "/", Expires: time.Unix(0, 0), HTTPOnly: true})
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}
