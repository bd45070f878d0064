package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"hospital-admin-dashboard/internal/models"
	"hospital-admin-dashboard/internal/utils"
)

// AuditReader lists recorded actions.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	Audit AuditReader
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit AuditReader) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

// GetAuditEntries returns the newest entries first.
func (h *AuditHandler) GetAuditEntries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			utils.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	entries, err := h.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch audit entries")
		return
	}
	utils.Success(c, "Audit entries fetched successfully", entries)
}
