package rest

import (
	"strconv"

	"github.com/Builder-Lawyers/site-moderation/internal/application/dto"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type siteInfoResponse struct {
	SiteID    uint64     `json:"siteID"`
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Archived  bool       `json:"archived"`
	Deleted   bool       `json:"deleted"`
	Pending   bool       `json:"pending"`
	CreatorID *uuid.UUID `json:"creatorID,omitempty"`
}

func (s *Server) CreateSite(c *fiber.Ctx) error {
	identity := identityFrom(c)
	if identity == nil {
		return jsonError(c, errs.PermissionsError{Err: auth.ErrNoSession})
	}
	var req dto.CreateSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	siteID, err := s.handlers.CreateSite.Execute(c.UserContext(), &req, identity)
	if err != nil {
		return jsonError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateSiteResponse{SiteID: siteID})
}

func (s *Server) SiteInfo(c *fiber.Ctx) error {
	siteID, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid site id"})
	}
	site, err := s.handlers.GetSite.Query(c.UserContext(), siteID)
	if err != nil {
		return jsonError(c, err)
	}
	resp := siteInfoResponse{
		SiteID:   site.ID,
		Name:     site.Name,
		URL:      site.HomeURL(s.platform.Scheme),
		Archived: site.Archived,
		Deleted:  site.Deleted,
	}
	creatorID, pending, err := s.handlers.Moderation.CreatorID(c.UserContext(), siteID)
	if err != nil {
		return jsonError(c, err)
	}
	resp.Pending = pending
	if pending && creatorID != uuid.Nil {
		resp.CreatorID = &creatorID
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) UpdateSite(c *fiber.Ctx) error {
	siteID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid site id"})
	}
	var req dto.UpdateSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	if req.Archived == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "archived is required"})
	}

	if err = s.handlers.UpdateArchived.Execute(c.UserContext(), siteID, *req.Archived, identityFrom(c).UserID); err != nil {
		return jsonError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.UpdateSiteResponse{SiteID: siteID, Archived: *req.Archived})
}

// DeleteSite drops the site unless drop=false is passed, which only flags it
// deleted.
func (s *Server) DeleteSite(c *fiber.Ctx) error {
	siteID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid site id"})
	}

	if err = s.handlers.DeleteSite.Execute(c.UserContext(), siteID, c.QueryBool("drop", true)); err != nil {
		return jsonError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
