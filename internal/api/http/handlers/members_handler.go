package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roster-service/internal/api/dto"
	"github.com/spec-kit/roster-service/internal/auth"
	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/repository"
	"github.com/spec-kit/roster-service/internal/service"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

// MembersHandler manages roster member endpoints.
type MembersHandler struct {
	service *service.MemberService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(memberService *service.MemberService) *MembersHandler {
	return &MembersHandler{service: memberService}
}

// CreateMember POST /members.
func (h *MembersHandler) CreateMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	var req dto.MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	member, err := h.service.CreateMember(c.Context(), principal.Role, memberInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": memberDetail(member)})
}

// UpdateMember PUT /members/:id.
func (h *MembersHandler) UpdateMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	var req dto.MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	member, err := h.service.UpdateMember(c.Context(), principal.Role, c.Params("id"), memberInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": memberDetail(member)})
}

// DeleteMember DELETE /members/:id.
func (h *MembersHandler) DeleteMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	if err := h.service.DeleteMember(c.Context(), principal.Role, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetMember GET /members/:id.
func (h *MembersHandler) GetMember(c *fiber.Ctx) error {
	member, err := h.service.GetMember(c.Context(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": memberDetail(member)})
}

// ListMembers GET /members.
func (h *MembersHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.service.ListMembers(c.Context(), parseMemberQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.MemberSummary, 0, len(members))
	for i := range members {
		items = append(items, memberSummary(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ExportMembers GET /members/export.
func (h *MembersHandler) ExportMembers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	csv, err := h.service.ExportCSV(c.Context(), principal.Role)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="roster.csv"`)
	return c.SendString(csv)
}

func parseMemberQuery(c *fiber.Ctx) repository.MemberFilter {
	filter := repository.MemberFilter{}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}
	if groupID := c.Query("group_id"); groupID != "" {
		filter.GroupID = &groupID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.ParseMemberStatus(statusStr)
		filter.Status = &status
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func memberInput(req dto.MemberRequest) service.MemberInput {
	return service.MemberInput{
		Name:           req.Name,
		Title:          req.Title,
		Email:          req.Email,
		Status:         domain.ParseMemberStatus(req.Status),
		MemberType:     domain.ParseMemberType(req.MemberType),
		AcademyLevel:   domain.ParseAcademyLevel(req.AcademyLevel),
		Phone:          req.Phone,
		Address:        req.Address,
		Bio:            req.Bio,
		Gender:         req.Gender,
		BirthDate:      req.BirthDate,
		DateJoined:     req.DateJoined,
		GroupID:        req.GroupID,
		Subgroup:       req.Subgroup,
		Affiliations:   req.Affiliations,
		Achievements:   req.Achievements,
		Certifications: req.Certifications,
		Sessions:       req.Sessions,
	}
}

func memberSummary(m *domain.Member) dto.MemberSummary {
	return dto.MemberSummary{
		ID:         m.ID,
		Name:       m.Name,
		Title:      m.Title,
		Email:      m.Email,
		Status:     m.Status,
		MemberType: m.MemberType,
		GroupID:    m.GroupID,
		Subgroup:   m.Subgroup,
		DateJoined: m.DateJoined,
	}
}

func memberDetail(m *domain.Member) dto.MemberDetailResponse {
	return dto.MemberDetailResponse{
		ID:                   m.ID,
		Name:                 m.Name,
		Title:                m.Title,
		Email:                m.Email,
		Status:               m.Status,
		MemberType:           m.MemberType,
		AcademyLevel:         m.AcademyLevel,
		Phone:                m.Phone,
		Address:              m.Address,
		Bio:                  m.Bio,
		Gender:               m.Gender,
		BirthDate:            m.BirthDate,
		DateJoined:           m.DateJoined,
		GroupID:              m.GroupID,
		Subgroup:             m.Subgroup,
		Affiliations:         m.Affiliations,
		Achievements:         m.Achievements,
		Certifications:       m.Certifications,
		Sessions:             m.Sessions,
		ActivityLog:          logEntries(m.ActivityLog),
		CommunicationsLog:    logEntries(m.CommunicationsLog),
		CoachComments:        logEntries(m.CoachComments),
		SessionCancellations: logEntries(m.SessionCancellations),
		PhotoLinks:           m.PhotoLinks,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func logEntries(entries []domain.LogEntry) []dto.LogEntryResponse {
	resp := make([]dto.LogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.LogEntryResponse{Note: entry.Note, At: entry.At})
	}
	return resp
}
