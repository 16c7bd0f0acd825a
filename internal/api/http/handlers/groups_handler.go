package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roster-service/internal/api/dto"
	"github.com/spec-kit/roster-service/internal/auth"
	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/service"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

// GroupsHandler manages the group taxonomy endpoints.
type GroupsHandler struct {
	service *service.GroupService
}

// NewGroupsHandler constructs handler.
func NewGroupsHandler(groupService *service.GroupService) *GroupsHandler {
	return &GroupsHandler{service: groupService}
}

// CreateGroup POST /groups.
func (h *GroupsHandler) CreateGroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	group, err := h.service.CreateGroup(c.Context(), principal.Role, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": groupResponse(group)})
}

// RenameGroup PUT /groups/:id.
func (h *GroupsHandler) RenameGroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	group, err := h.service.RenameGroup(c.Context(), principal.Role, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// DeleteGroup DELETE /groups/:id.
func (h *GroupsHandler) DeleteGroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	if err := h.service.DeleteGroup(c.Context(), principal.Role, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddSubgroup POST /groups/:id/subgroups.
func (h *GroupsHandler) AddSubgroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	var req dto.SubgroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	group, err := h.service.AddSubgroup(c.Context(), principal.Role, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": groupResponse(group)})
}

// RemoveSubgroup DELETE /groups/:id/subgroups/:name.
func (h *GroupsHandler) RemoveSubgroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	name, err := unescapeParam(c.Params("name"))
	if err != nil {
		return apperrors.NewValidationError("invalid subgroup name", nil)
	}

	group, err := h.service.RemoveSubgroup(c.Context(), principal.Role, c.Params("id"), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// ListGroups GET /groups.
func (h *GroupsHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.service.ListGroups(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		items = append(items, groupResponse(&groups[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetGroup GET /groups/:id.
func (h *GroupsHandler) GetGroup(c *fiber.Ctx) error {
	group, err := h.service.GetGroup(c.Context(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

func unescapeParam(raw string) (string, error) {
	return url.PathUnescape(raw)
}

func groupResponse(g *domain.Group) dto.GroupResponse {
	return dto.GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Subgroups: g.Subgroups,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
