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

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		products.GET("", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.ListProducts)
		products.GET("/:id", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.GetProduct)
		products.POST("", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.CreateProduct)
		products.PUT("/:id", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.UpdateProduct)
		products.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteProduct)

		products.GET("/:id/components", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.ListComponents)
		products.POST("/:id/components", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.AddComponent)
	}

	router.DELETE("/api/components/:id", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.RemoveComponent)

	categories := router.Group("/api/categories")
	{
		categories.GET("", middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin), h.ListCategories)
		categories.POST("", middleware.RequireRole(model.RoleManager, model.RoleAdmin), h.CreateCategory)
	}
}

// ListProducts returns paginated products
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Filter by name"
// @Success      200 {object} map[string]interface{}
// @Router       /api/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := pagination.Parse(c)

	products, total, err := h.productService.GetProducts(c.Request.Context(), params.Page, params.Limit, c.Query("search"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   products,
		"meta":   params.MetaFor(total),
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// CreateProduct registers a new product
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body service.CreateProductRequest true "Product"
// @Success      201 {object} response.Response{data=service.ProductResponse}
// @Failure      400 {object} response.Response
// @Router       /api/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := middleware.ActorFrom(c)
	product, err := h.productService.CreateProduct(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := middleware.ActorFrom(c)
	product, err := h.productService.UpdateProduct(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, _ := middleware.ActorFrom(c)
	if err := h.productService.DeleteProduct(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListComponents returns the recipe breakdown of a composite product
// @Summary      List recipe components
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Recipe Product ID"
// @Success      200 {object} response.Response{data=[]service.ComponentResponse}
// @Router       /api/products/{id}/components [get]
func (h *ProductHandler) ListComponents(c *gin.Context) {
	components, err := h.productService.ListComponents(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, components))
}

func (h *ProductHandler) AddComponent(c *gin.Context) {
	var req service.AddComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := middleware.ActorFrom(c)
	component, err := h.productService.AddComponent(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, component))
}

func (h *ProductHandler) RemoveComponent(c *gin.Context) {
	userID, _ := middleware.ActorFrom(c)
	if err := h.productService.RemoveComponent(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.productService.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}
