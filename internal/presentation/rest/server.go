package rest

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"

	"github.com/Builder-Lawyers/site-moderation/internal/application"
	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/config"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/i18n"
	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	localIdentity = "identity"
	localSite     = "site"
)

type Server struct {
	handlers *application.Handlers
	platform *config.PlatformConfig
	tr       i18n.Translator
	pages    *template.Template
}

func NewServer(handlers *application.Handlers, platform *config.PlatformConfig, tr i18n.Translator) (*Server, error) {
	pages, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{handlers: handlers, platform: platform, tr: tr, pages: pages}, nil
}

func RegisterHandlers(app *fiber.App, s *Server) {
	app.Use(s.Identity)
	app.Use(s.Gate)

	app.Get("/sites", s.Directory)
	app.Get("/sites/:scope", s.Directory)
	app.Get("/moderation", s.Moderate)
	app.Get("/logout", s.Logout)
	app.Post("/logout", s.Logout)
	app.Get("/register/site", s.RegisterForm)
	app.Post("/register/site", s.RegisterSite)

	app.Post("/api/sites", s.CreateSite)

	network := app.Group("/network", s.RequireSuperAdmin)
	network.Get("/site-info", s.SiteInfo)
	network.Put("/sites/:id", s.UpdateSite)
	network.Delete("/sites/:id", s.DeleteSite)

	app.Get("/*", s.SiteFront)
}

func identityFrom(c *fiber.Ctx) *auth.Identity {
	identity, _ := c.Locals(localIdentity).(*auth.Identity)
	return identity
}

func (s *Server) render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("err rendering page", "page", name, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func errorStatus(err error) int {
	switch {
	case errors.As(err, &errs.PermissionsError{}):
		return fiber.StatusForbidden
	case errors.As(err, &errs.NotFoundError{}):
		return fiber.StatusNotFound
	case errors.As(err, &errs.ValidationError{}):
		return fiber.StatusBadRequest
	case errors.As(err, &errs.ConflictError{}):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func jsonError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: err.Error()})
}
