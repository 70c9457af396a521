package repository

import (
	"context"
	"testing"

	"stockroom/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeRepositoryComponents(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	cocktail := model.Product{SKU: "COCKTAIL", Name: "Cocktail", Unit: "pcs"}
	juice := model.Product{SKU: "JUICE", Name: "Juice", Unit: "l"}
	syrup := model.Product{SKU: "SYRUP", Name: "Syrup", Unit: "l"}
	for _, p := range []*model.Product{&cocktail, &juice, &syrup} {
		require.NoError(t, db.WithContext(ctx).Create(p).Error)
	}

	require.NoError(t, repo.Create(ctx, &model.RecipeComponent{
		ProductRecipeID: cocktail.ID, ComponentProductID: juice.ID, Amount: decimal.RequireFromString("0.5"),
	}))
	require.NoError(t, repo.Create(ctx, &model.RecipeComponent{
		ProductRecipeID: cocktail.ID, ComponentProductID: syrup.ID, Amount: decimal.RequireFromString("0.2"),
	}))

	components, err := repo.ComponentsOf(ctx, cocktail.ID)
	require.NoError(t, err)
	assert.Len(t, components, 2)

	// An atomic product has no components.
	components, err = repo.ComponentsOf(ctx, juice.ID)
	require.NoError(t, err)
	assert.Empty(t, components)
}

func TestRecipeRepositoryRejectsDuplicatePair(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	cocktail := model.Product{SKU: "COCKTAIL", Name: "Cocktail", Unit: "pcs"}
	juice := model.Product{SKU: "JUICE", Name: "Juice", Unit: "l"}
	for _, p := range []*model.Product{&cocktail, &juice} {
		require.NoError(t, db.WithContext(ctx).Create(p).Error)
	}

	require.NoError(t, repo.Create(ctx, &model.RecipeComponent{
		ProductRecipeID: cocktail.ID, ComponentProductID: juice.ID, Amount: decimal.NewFromInt(1),
	}))

	err := repo.Create(ctx, &model.RecipeComponent{
		ProductRecipeID: cocktail.ID, ComponentProductID: juice.ID, Amount: decimal.NewFromInt(2),
	})
	assert.Error(t, err)
}

func TestRecipeRepositoryDelete(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	cocktail := model.Product{SKU: "COCKTAIL", Name: "Cocktail", Unit: "pcs"}
	juice := model.Product{SKU: "JUICE", Name: "Juice", Unit: "l"}
	for _, p := range []*model.Product{&cocktail, &juice} {
		require.NoError(t, db.WithContext(ctx).Create(p).Error)
	}

	component := model.RecipeComponent{
		ProductRecipeID: cocktail.ID, ComponentProductID: juice.ID, Amount: decimal.NewFromInt(1),
	}
	require.NoError(t, repo.Create(ctx, &component))
	require.NoError(t, repo.Delete(ctx, component.ID))

	components, err := repo.ComponentsOf(ctx, cocktail.ID)
	require.NoError(t, err)
	assert.Empty(t, components)
}
