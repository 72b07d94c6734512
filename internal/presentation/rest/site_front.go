package rest

import (
	"errors"

	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/gofiber/fiber/v2"
)

// SiteFront renders the home page of the site serving the request.
func (s *Server) SiteFront(c *fiber.Ctx) error {
	site, ok := c.Locals(localSite).(*entity.Site)
	if !ok {
		var err error
		site, err = s.handlers.GetSiteByAddress.Query(c.UserContext(), c.Hostname(), c.Path())
		if err != nil {
			if errors.As(err, &errs.NotFoundError{}) {
				return c.SendStatus(fiber.StatusNotFound)
			}
			return jsonError(c, err)
		}
	}
	identity := identityFrom(c)
	if site.Deleted || site.Spam || (site.Archived && (identity == nil || !identity.SuperAdmin)) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return s.render(c, fiber.StatusOK, "site", struct {
		Name string
		URL  string
	}{Name: site.Name, URL: site.HomeURL(s.platform.Scheme)})
}
