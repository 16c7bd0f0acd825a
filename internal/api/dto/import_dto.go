package dto

import (
	"time"

	"github.com/spec-kit/roster-service/internal/bulk"
)

// ImportPreviewResponse summarizes a reconciled batch awaiting confirmation.
type ImportPreviewResponse struct {
	ImportID     string          `json:"import_id"`
	FileName     string          `json:"file_name,omitempty"`
	Inserted     int             `json:"inserted"`
	Updated      int             `json:"updated"`
	ErrorCount   int             `json:"error_count"`
	SampleErrors []bulk.RowError `json:"sample_errors"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
}

// AssertRoleRequest payload for session assertion.
type AssertRoleRequest struct {
	Role string `json:"role"`
}

// AssertRoleResponse carries the signed role token.
type AssertRoleResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
