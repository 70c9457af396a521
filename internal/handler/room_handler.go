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

type RoomHandler struct {
	roomService service.StorageRoomService
}

func NewRoomHandler(roomService service.StorageRoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (h *RoomHandler) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/api/rooms")
	{
		rooms.GET("", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.ListRooms)
		rooms.GET("/:id", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.GetRoom)
		rooms.POST("", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.CreateRoom)
		rooms.PUT("/:id", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.UpdateRoom)
	}
}

// ListRooms returns paginated storage rooms
// @Summary      List storage rooms
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        page   query int false "Page number (default 1)"
// @Param        limit  query int false "Items per page (default 20)"
// @Success      200 {object} map[string]interface{}
// @Router       /api/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	params := pagination.Parse(c)

	rooms, total, err := h.roomService.ListRooms(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   rooms,
		"meta":   params.MetaFor(total),
	})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, room))
}

// CreateRoom registers a new storage room
// @Summary      Create storage room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body service.CreateRoomRequest true "Room"
// @Success      201 {object} response.Response{data=service.RoomResponse}
// @Failure      400 {object} response.Response
// @Router       /api/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := middleware.ActorFrom(c)
	room, err := h.roomService.CreateRoom(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, room))
}

func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	var req service.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := middleware.ActorFrom(c)
	room, err := h.roomService.UpdateRoom(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, room))
}
