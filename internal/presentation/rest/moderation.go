package rest

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	appconsts "github.com/Builder-Lawyers/site-moderation/internal/application/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/gofiber/fiber/v2"
)

// Moderate handles the approve and decline links of the pending queue and
// always redirects back.
func (s *Server) Moderate(c *fiber.Ctx) error {
	siteID, _ := strconv.ParseUint(c.Query(appconsts.QuerySiteID), 10, 64)
	req := dto.ReviewRequest{
		SiteID:  siteID,
		Approve: c.Query(appconsts.QueryApprove),
		Decline: c.Query(appconsts.QueryDecline),
	}

	result, err := s.handlers.Moderation.Review(c.UserContext(), req, identityFrom(c))
	if err != nil {
		return jsonError(c, err)
	}
	if result.Message != "" {
		setFlash(c, result.Message)
	}
	return c.Redirect(s.backURL(c), fiber.StatusSeeOther)
}

// backURL is the referer when it points at this network, the directory
// otherwise.
func (s *Server) backURL(c *fiber.Ctx) string {
	fallback := s.platform.DirectoryURL()
	referer := c.Get(fiber.HeaderReferer)
	if referer == "" {
		return fallback
	}
	u, err := url.Parse(referer)
	if err != nil {
		return fallback
	}
	if u.Host == "" && strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(u.Path, "//") {
		return referer
	}
	host := strings.ToLower(u.Hostname())
	if host == s.platform.MainDomain || strings.HasSuffix(host, "."+s.platform.MainDomain) {
		return referer
	}
	slog.Debug("foreign referer ignored", "referer", referer)
	return fallback
}

func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{Name: appconsts.CookieSession, Value: "", Path: "/", Expires: time.Unix(0, 0), HTTPOnly: true})
	if scope, ok := s.handlers.Moderation.LogoutScope(c.Cookies(appconsts.CookieScope)); ok {
		c.Cookie(&fiber.Cookie{Name: appconsts.CookieScope, Value: scope, Path: "/"})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
