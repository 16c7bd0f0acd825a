package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roster-service/internal/api/dto"
	"github.com/spec-kit/roster-service/internal/auth"
	"github.com/spec-kit/roster-service/internal/service"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

// ImportsHandler exposes the bulk import workflow: upload a CSV, review the
// reconciled preview, then confirm or discard it.
type ImportsHandler struct {
	service *service.ImportService
}

// NewImportsHandler constructs handler.
func NewImportsHandler(importService *service.ImportService) *ImportsHandler {
	return &ImportsHandler{service: importService}
}

// Preview POST /imports/preview.
func (h *ImportsHandler) Preview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}

	fileName, payload, err := readUpload(c)
	if err != nil {
		return err
	}

	preview, err := h.service.Preview(c.Context(), principal.Role, fileName, payload)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": previewResponse(preview)})
}

// Confirm POST /imports/:id/confirm.
func (h *ImportsHandler) Confirm(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	preview, err := h.service.Confirm(c.Context(), principal.Role, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": previewResponse(preview)})
}

// Discard DELETE /imports/:id.
func (h *ImportsHandler) Discard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("role assertion required")
	}
	if err := h.service.Discard(c.Context(), principal.Role, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// readUpload accepts either a multipart "file" part or a raw CSV body.
func readUpload(c *fiber.Ctx) (string, []byte, error) {
	if header, err := c.FormFile("file"); err == nil {
		file, err := header.Open()
		if err != nil {
			return "", nil, apperrors.NewValidationError("unreadable upload", nil)
		}
		defer file.Close()
		payload, err := io.ReadAll(file)
		if err != nil {
			return "", nil, apperrors.NewValidationError("unreadable upload", nil)
		}
		return header.Filename, payload, nil
	}

	payload := c.Body()
	if len(payload) == 0 {
		return "", nil, apperrors.NewValidationError("empty upload", nil)
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return "upload.csv", buf, nil
}

func previewResponse(p *service.ImportPreview) dto.ImportPreviewResponse {
	resp := dto.ImportPreviewResponse{
		ImportID:     p.ImportID,
		FileName:     p.FileName,
		Inserted:     p.Inserted,
		Updated:      p.Updated,
		ErrorCount:   p.ErrorCount,
		SampleErrors: p.SampleErrors,
	}
	if !p.ExpiresAt.IsZero() {
		expires := p.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
