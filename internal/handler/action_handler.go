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

type ActionHandler struct {
	actionService service.ActionService
}

func NewActionHandler(actionService service.ActionService) *ActionHandler {
	return &ActionHandler{actionService: actionService}
}

func (h *ActionHandler) RegisterRoutes(router *gin.RouterGroup) {
	actions := router.Group("/api/actions")
	{
		actions.POST("", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.SubmitAction)
		actions.GET("", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.ListActions)
		actions.GET("/:id", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.GetAction)
		actions.PUT("/:id/accept", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.AcceptAction)
		actions.PUT("/:id/decline", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.DeclineAction)
	}

	reasons := router.Group("/api/reasons")
	{
		reasons.GET("", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.ListReasons)
		reasons.POST("", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.CreateReason)
	}
}

// SubmitAction creates a pending movement request
// @Summary      Submit movement request
// @Description  Creates a PENDING inventory movement request for a product in a storage room
// @Tags         actions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitActionRequest  true  "Movement Request"
// @Success      201      {object}  response.Response{data=service.ActionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/actions [post]
func (h *ActionHandler) SubmitAction(c *gin.Context) {
	var req service.SubmitActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := middleware.ActorFrom(c)
	result, err := h.actionService.SubmitAction(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListActions returns movement requests, optionally filtered
// @Summary      List movement requests
// @Tags         actions
// @Produce      json
// @Security     BearerAuth
// @Param        status           query string false "PENDING, ACCEPTED or DECLINED"
// @Param        product_id       query string false "Filter by product"
// @Param        storage_room_id  query string false "Filter by storage room"
// @Success      200 {object} map[string]interface{}
// @Router       /api/actions [get]
func (h *ActionHandler) ListActions(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.ActionListFilter{
		Status:        c.Query("status"),
		ProductID:     c.Query("product_id"),
		StorageRoomID: c.Query("storage_room_id"),
		CreatedBy:     c.Query("created_by"),
		Page:          params.Page,
		Limit:         params.Limit,
	}

	actions, total, err := h.actionService.ListActions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   actions,
		"meta":   params.MetaFor(total),
	})
}

// GetAction returns a single movement request with relations
func (h *ActionHandler) GetAction(c *gin.Context) {
	result, err := h.actionService.GetAction(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// AcceptAction transitions a pending movement request to ACCEPTED
// @Summary      Accept movement request
// @Description  Finalizes a pending request; acceptance expands recipes and posts to the statistics ledger
// @Tags         actions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Action ID"
// @Success      200 {object} response.Response{data=service.ActionResponse}
// @Failure      400 {object} response.Response
// @Failure      403 {object} response.Response
// @Failure      404 {object} response.Response
// @Failure      409 {object} response.Response
// @Failure      500 {object} response.Response "Ledger postings incomplete"
// @Router       /api/actions/{id}/accept [put]
func (h *ActionHandler) AcceptAction(c *gin.Context) {
	h.transition(c, model.ActionStatusAccepted)
}

// DeclineAction transitions a pending movement request to DECLINED
// @Summary      Decline movement request
// @Tags         actions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Action ID"
// @Success      200 {object} response.Response{data=service.ActionResponse}
// @Router       /api/actions/{id}/decline [put]
func (h *ActionHandler) DeclineAction(c *gin.Context) {
	h.transition(c, model.ActionStatusDeclined)
}

func (h *ActionHandler) transition(c *gin.Context, status string) {
	userID, role := middleware.ActorFrom(c)

	result, err := h.actionService.Transition(c.Request.Context(), c.Param("id"), status, userID, role)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type createReasonRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateReason adds a movement reason
func (h *ActionHandler) CreateReason(c *gin.Context) {
	var req createReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	reason, err := h.actionService.CreateReason(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, reason))
}

// ListReasons returns all movement reasons
func (h *ActionHandler) ListReasons(c *gin.Context) {
	reasons, err := h.actionService.ListReasons(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, reasons))
}
