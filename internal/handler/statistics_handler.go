package handler

import (
	"net/http"

	"stockroom/internal/middleware"
	"stockroom/internal/model"
	"stockroom/internal/service"
	"stockroom/pkg/pagination"
	"stockroom/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/api/statistics")
	{
		statsGroup.GET("", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.ListRecords)
		statsGroup.GET("/overview", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.GetOverview)
	}
}

// ListRecords returns ledger records, optionally filtered by storage room
// @Summary      List statistics records
// @Description  Running consumption totals per (product, storage room) pair
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        storage_room_id query string false "Filter by storage room"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{} "Invalid storage_room_id"
// @Router       /api/statistics [get]
func (h *StatisticsHandler) ListRecords(c *gin.Context) {
	params := pagination.Parse(c)

	var roomID *uuid.UUID
	if raw := c.Query("storage_room_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid storage_room_id"))
			return
		}
		roomID = &parsed
	}

	records, total, err := h.statisticsService.ListRecords(c.Request.Context(), roomID, params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   records,
		"meta":   params.MetaFor(total),
	})
}

// GetOverview returns aggregated ledger totals for the dashboard
// @Summary      Ledger overview
// @Description  Top moved products and per-room consumption totals
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=service.StatisticsOverview}
// @Router       /api/statistics/overview [get]
func (h *StatisticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.statisticsService.Overview(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
