package rest

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/site"
	"github.com/Builder-Lawyers/site-moderation/internal/application/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/gofiber/fiber/v2"
)

// Identity resolves the session from the session cookie or a bearer token.
// Invalid sessions are treated as anonymous visitors.
func (s *Server) Identity(c *fiber.Ctx) error {
	token := c.Cookies(consts.CookieSession)
	if token == "" {
		if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return c.Next()
	}
	identity, err := s.handlers.GetIdentity.Query(c.UserContext(), token)
	if err != nil {
		slog.Debug("session rejected", "err", err)
		return c.Next()
	}
	c.Locals(localIdentity, identity)
	return c.Next()
}

// Gate turns visitors away from sites waiting in the moderation queue.
// Platform routes are never site content.
func (s *Server) Gate(c *fiber.Ctx) error {
	if !s.handlers.Moderation.Active() || site.IsReservedPath(c.Path()) {
		return c.Next()
	}
	current, err := s.handlers.GetSiteByAddress.Query(c.UserContext(), c.Hostname(), c.Path())
	if err != nil {
		if errors.As(err, &errs.NotFoundError{}) {
			return c.Next()
		}
		return jsonError(c, err)
	}
	c.Locals(localSite, current)

	blocked, err := s.handlers.Moderation.Blocks(c.UserContext(), current.ID, identityFrom(c))
	if err != nil {
		return jsonError(c, err)
	}
	if !blocked {
		return c.Next()
	}
	return s.render(c, fiber.StatusGone, "blocked", struct {
		Title   string
		Message string
	}{
		Title:   s.tr.T("moderation.blocked.title"),
		Message: s.tr.T("moderation.blocked.message"),
	})
}

func (s *Server) RequireSuperAdmin(c *fiber.Ctx) error {
	identity := identityFrom(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "login required"})
	}
	if !identity.SuperAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "super admin required"})
	}
	return c.Next()
}
