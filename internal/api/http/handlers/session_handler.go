package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roster-service/internal/api/dto"
	"github.com/spec-kit/roster-service/internal/auth"
	"github.com/spec-kit/roster-service/internal/domain"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

// SessionHandler issues role-assertion tokens. There is no login: the caller
// picks a role and every later request is evaluated against it.
type SessionHandler struct {
	tokens *auth.TokenManager
}

// NewSessionHandler constructs handler.
func NewSessionHandler(tokens *auth.TokenManager) *SessionHandler {
	return &SessionHandler{tokens: tokens}
}

// AssertRole handles POST /session/assert.
func (h *SessionHandler) AssertRole(c *fiber.Ctx) error {
	var req dto.AssertRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	token, expiresAt, err := h.tokens.GenerateToken(role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AssertRoleResponse{
		Token:     token,
		Role:      string(role),
		ExpiresAt: expiresAt,
	}})
}

// CurrentRole handles GET /session.
func (h *SessionHandler) CurrentRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": string(principal.Role)}})
}
