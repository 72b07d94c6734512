package rest

import (
	"fmt"
	"html/template"

	"github.com/Builder-Lawyers/site-moderation/internal/application/commands/site"
	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/domain/entity"
	"github.com/gofiber/fiber/v2"
)

type registerView struct {
	Title      string
	FormAction string
	FormTitle  string
	FormPath   string
	Error      string
	Created    bool
	Heading    template.HTML
	NewSite    template.HTML
	Login      template.HTML
}

func (s *Server) newRegisterView() *registerView {
	return &registerView{Title: s.tr.T("registration.title"), FormAction: "/register/site"}
}

func (s *Server) RegisterForm(c *fiber.Ctx) error {
	view := s.newRegisterView()
	if identityFrom(c) == nil {
		view.Error = s.tr.T("registration.login_required")
		return s.render(c, fiber.StatusUnauthorized, "register", view)
	}
	return s.render(c, fiber.StatusOK, "register", view)
}

// RegisterSite creates a site from the registration form and renders the
// confirmation.
func (s *Server) RegisterSite(c *fiber.Ctx) error {
	identity := identityFrom(c)
	view := s.newRegisterView()
	if identity == nil {
		view.Error = s.tr.T("registration.login_required")
		return s.render(c, fiber.StatusUnauthorized, "register", view)
	}

	var req dto.CreateSiteRequest
	if err := c.BodyParser(&req); err != nil {
		view.Error = err.Error()
		return s.render(c, fiber.StatusBadRequest, "register", view)
	}
	req.Domain = ""
	req.UserID = nil
	view.FormTitle, view.FormPath = req.Title, req.Path

	if _, err := s.handlers.CreateSite.Execute(c.UserContext(), &req, identity); err != nil {
		view.Error = err.Error()
		return s.render(c, errorStatus(err), "register", view)
	}

	created := entity.Site{Domain: s.platform.MainDomain, Path: site.NormalizePath(req.Path)}
	home := template.HTMLEscapeString(created.HomeURL(s.platform.Scheme))
	tr := s.handlers.Moderation.RegistrationTranslator(s.tr, identity.Username)

	view.Created = true
	view.Heading = template.HTML(template.HTMLEscapeString(tr.T("registration.success.heading")))
	view.NewSite = template.HTML(tr.T("registration.success.new_site", fmt.Sprintf(`<a href="%s">%s</a>`, home, home)))
	view.Login = template.HTML(tr.T("registration.success.login",
		template.HTMLEscapeString(created.AdminURL(s.platform.Scheme)), template.HTMLEscapeString(identity.Username)))
	return s.render(c, fiber.StatusCreated, "register", view)
}
