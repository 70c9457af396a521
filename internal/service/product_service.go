package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateProductRequest struct {
	SKU        string `json:"sku" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Unit       string `json:"unit"`
	CategoryID string `json:"category_id"`
}

type UpdateProductRequest struct {
	SKU        string `json:"sku" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Unit       string `json:"unit"`
	CategoryID string `json:"category_id"`
}

type AddComponentRequest struct {
	ComponentProductID string `json:"component_product_id" binding:"required"`
	Amount             string `json:"amount" binding:"required"`
}

type ProductResponse struct {
	ID           string  `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CategoryID   *string `json:"category_id"`
	CategoryName string  `json:"category_name,omitempty"`
}

type ComponentResponse struct {
	ID                 string `json:"id"`
	ComponentProductID string `json:"component_product_id"`
	ComponentName      string `json:"component_name,omitempty"`
	Amount             string `json:"amount"`
}

// ProductService manages products, categories and recipe breakdowns.
type ProductService interface {
	GetProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error)
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, userID, id string) error
	AddComponent(ctx context.Context, userID, recipeID string, req AddComponentRequest) (ComponentResponse, error)
	RemoveComponent(ctx context.Context, userID, componentID string) error
	ListComponents(ctx context.Context, recipeID string) ([]ComponentResponse, error)
	CreateCategory(ctx context.Context, name string) (*model.ProductCategory, error)
	ListCategories(ctx context.Context) ([]model.ProductCategory, error)
}

type productService struct {
	productRepo repository.ProductRepository
	recipeRepo  repository.RecipeRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	recipeRepo repository.RecipeRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo: productRepo,
		recipeRepo:  recipeRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *productService) GetProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	products, total, err := s.productRepo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res, total, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid product id")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperr.New(apperr.KindNotFound, "product not found")
		}
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error) {
	if _, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil {
		return ProductResponse{}, apperr.New(apperr.KindInvalidArgument, "sku already exists")
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		parsed, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return ProductResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid category_id")
		}
		categoryID = &parsed
	}

	product := model.Product{
		SKU:        req.SKU,
		Name:       req.Name,
		Unit:       req.Unit,
		CategoryID: categoryID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.productRepo.Create(txCtx, &product); createErr != nil {
			return fmt.Errorf("failed to create product: %w", createErr)
		}
		return s.logAudit(txCtx, userID, model.ActionCreateProduct, product.ID.String(), product.Name, map[string]interface{}{
			"sku": product.SKU,
		})
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(&product), nil
}

func (s *productService) UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid product id")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperr.New(apperr.KindNotFound, "product not found")
		}
		return ProductResponse{}, err
	}

	product.SKU = req.SKU
	product.Name = req.Name
	product.Unit = req.Unit
	if req.CategoryID != "" {
		parsed, parseErr := uuid.Parse(req.CategoryID)
		if parseErr != nil {
			return ProductResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid category_id")
		}
		product.CategoryID = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.productRepo.Update(txCtx, product); updateErr != nil {
			return fmt.Errorf("failed to update product: %w", updateErr)
		}
		return s.logAudit(txCtx, userID, model.ActionUpdateProduct, product.ID.String(), product.Name, nil)
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(product), nil
}

func (s *productService) DeleteProduct(ctx context.Context, userID, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return apperr.New(apperr.KindInvalidArgument, "invalid product id")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "product not found")
		}
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.productRepo.Delete(txCtx, productID); delErr != nil {
			return fmt.Errorf("failed to delete product: %w", delErr)
		}
		return s.logAudit(txCtx, userID, model.ActionDeleteProduct, product.ID.String(), product.Name, nil)
	})
}

// AddComponent attaches a raw component to a composite product. The amount
// is the per-unit multiplier and must be positive at CRUD time; existing
// zero-amount rows are still expanded into zero postings.
func (s *productService) AddComponent(ctx context.Context, userID, recipeID string, req AddComponentRequest) (ComponentResponse, error) {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return ComponentResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid recipe product id")
	}
	componentUUID, err := uuid.Parse(req.ComponentProductID)
	if err != nil {
		return ComponentResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid component product id")
	}
	if recipeUUID == componentUUID {
		return ComponentResponse{}, apperr.New(apperr.KindInvalidArgument, "a product cannot be a component of itself")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return ComponentResponse{}, apperr.New(apperr.KindInvalidArgument, "amount must be a positive decimal")
	}

	if _, err := s.productRepo.FindByID(ctx, recipeUUID); err != nil {
		return ComponentResponse{}, apperr.New(apperr.KindInvalidArgument, "recipe product does not exist")
	}
	if _, err := s.productRepo.FindByID(ctx, componentUUID); err != nil {
		return ComponentResponse{}, apperr.New(apperr.KindInvalidArgument, "component product does not exist")
	}

	component := model.RecipeComponent{
		ProductRecipeID:    recipeUUID,
		ComponentProductID: componentUUID,
		Amount:             amount,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.recipeRepo.Create(txCtx, &component); createErr != nil {
			return fmt.Errorf("failed to create recipe component: %w", createErr)
		}
		return s.logAudit(txCtx, userID, model.ActionCreateComponent, component.ID.String(), "", map[string]interface{}{
			"recipe_id":    recipeID,
			"component_id": req.ComponentProductID,
			"amount":       amount.StringFixed(4),
		})
	})
	if err != nil {
		return ComponentResponse{}, err
	}

	return ComponentResponse{
		ID:                 component.ID.String(),
		ComponentProductID: component.ComponentProductID.String(),
		Amount:             component.Amount.StringFixed(4),
	}, nil
}

func (s *productService) RemoveComponent(ctx context.Context, userID, componentID string) error {
	id, err := uuid.Parse(componentID)
	if err != nil {
		return apperr.New(apperr.KindInvalidArgument, "invalid component id")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.recipeRepo.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("failed to delete recipe component: %w", delErr)
		}
		return s.logAudit(txCtx, userID, model.ActionDeleteComponent, componentID, "", nil)
	})
}

func (s *productService) ListComponents(ctx context.Context, recipeID string) ([]ComponentResponse, error) {
	id, err := uuid.Parse(recipeID)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidArgument, "invalid recipe product id")
	}

	components, err := s.recipeRepo.ListByRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	res := make([]ComponentResponse, 0, len(components))
	for _, c := range components {
		cr := ComponentResponse{
			ID:                 c.ID.String(),
			ComponentProductID: c.ComponentProductID.String(),
			Amount:             c.Amount.StringFixed(4),
		}
		if c.Component != nil {
			cr.ComponentName = c.Component.Name
		}
		res = append(res, cr)
	}
	return res, nil
}

func (s *productService) CreateCategory(ctx context.Context, name string) (*model.ProductCategory, error) {
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "category name is required")
	}
	category := model.ProductCategory{Name: name}
	if err := s.productRepo.CreateCategory(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *productService) ListCategories(ctx context.Context) ([]model.ProductCategory, error) {
	return s.productRepo.ListCategories(ctx)
}

func (s *productService) logAudit(ctx context.Context, userID, action, entityID, entityName string, details map[string]interface{}) error {
	var actor *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		actor = &parsed
	}

	payload := ""
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}

	return s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     actor,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	})
}

func toProductResponse(p *model.Product) ProductResponse {
	res := ProductResponse{
		ID:   p.ID.String(),
		SKU:  p.SKU,
		Name: p.Name,
		Unit: p.Unit,
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		res.CategoryID = &id
	}
	if p.Category != nil {
		res.CategoryName = p.Category.Name
	}
	return res
}
