package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuditLogResponse struct {
	ID         uint                   `json:"id"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource,omitempty"`
	ResourceID string                 `json:"resource_id,omitempty"`
	Status     string                 `json:"status"`
	IPAddress  string                 `json:"ip_address"`
	UserAgent  string                 `json:"user_agent"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

type AuditHandler struct {
	auditUC *usecase.AuditLogUseCase
	logger  *zap.Logger
}

func NewAuditHandler(ucs *usecase.UseCases, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditUC: ucs.AuditLog,
		logger:  logger,
	}
}

// List returns the caller's recent security events, newest first.
// GET /audit/logs
func (h *AuditHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	logs, err := h.auditUC.List(c.Request().Context(), middleware.CurrentUserID(c), limit)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load audit logs")
	}

	resp := make([]AuditLogResponse, 0, len(logs))
	for _, entry := range logs {
		resp = append(resp, AuditLogResponse{
			ID:         entry.ID,
			Action:     string(entry.Action),
			Resource:   entry.Resource,
			ResourceID: entry.ResourceID,
			Status:     string(entry.Status),
			IPAddress:  entry.IPAddress,
			UserAgent:  entry.UserAgent,
			Details:    entry.Details,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"logs": resp})
}
