package repository

import (
	"context"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository resolves composite-product breakdowns. An empty
// ComponentsOf result means the product is atomic.
type RecipeRepository interface {
	ComponentsOf(ctx context.Context, productID uuid.UUID) ([]model.RecipeComponent, error)
	Create(ctx context.Context, component *model.RecipeComponent) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRecipe(ctx context.Context, productID uuid.UUID) ([]model.RecipeComponent, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) ComponentsOf(ctx context.Context, productID uuid.UUID) ([]model.RecipeComponent, error) {
	var components []model.RecipeComponent
	if err := GetDB(ctx, r.db).
		Where("product_recipe_id = ?", productID).
		Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

func (r *recipeRepository) Create(ctx context.Context, component *model.RecipeComponent) error {
	return GetDB(ctx, r.db).Create(component).Error
}

func (r *recipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RecipeComponent{}).Error
}

func (r *recipeRepository) ListByRecipe(ctx context.Context, productID uuid.UUID) ([]model.RecipeComponent, error) {
	var components []model.RecipeComponent
	if err := GetDB(ctx, r.db).
		Preload("Component").
		Where("product_recipe_id = ?", productID).
		Order("created_at asc").
		Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}
