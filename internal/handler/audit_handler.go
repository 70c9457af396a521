package handler

import (
	"net/http"

	"stockroom/internal/middleware"
	"stockroom/internal/model"
	"stockroom/internal/service"
	"stockroom/pkg/pagination"
	"stockroom/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.ListAuditLogs)
}

// ListAuditLogs returns paginated audit entries
// @Summary      List audit logs
// @Description  Retrieves a paginated audit trail, optionally filtered by action code
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        action query string false "Action code filter"
// @Param        page   query int    false "Page number (default 1)"
// @Param        limit  query int    false "Items per page (default 20)"
// @Success      200 {object} map[string]interface{}
// @Failure      500 {object} response.Response
// @Router       /api/audit [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   logs,
		"meta":   params.MetaFor(total),
	})
}
