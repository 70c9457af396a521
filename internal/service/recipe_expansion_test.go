package service

import (
	"context"
	"errors"
	"testing"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecipeRepo struct {
	componentsOf func(ctx context.Context, productID uuid.UUID) ([]model.RecipeComponent, error)
}

func (s *stubRecipeRepo) ComponentsOf(ctx context.Context, productID uuid.UUID) ([]model.RecipeComponent, error) {
	return s.componentsOf(ctx, productID)
}

func (s *stubRecipeRepo) Create(ctx context.Context, component *model.RecipeComponent) error {
	return nil
}

func (s *stubRecipeRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubRecipeRepo) ListByRecipe(ctx context.Context, productID uuid.UUID) ([]model.RecipeComponent, error) {
	return nil, nil
}

func TestExpandAtomicProduct(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	expander := NewRecipeExpander(&stubRecipeRepo{
		componentsOf: func(ctx context.Context, id uuid.UUID) ([]model.RecipeComponent, error) {
			return nil, nil
		},
	})

	postings, err := expander.Expand(context.Background(), productID, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, productID, postings[0].ProductID)
	assert.True(t, postings[0].Quantity.Equal(decimal.NewFromInt(3)))
}

func TestExpandCompositeProduct(t *testing.T) {
	t.Parallel()

	cocktailID := uuid.New()
	juiceID := uuid.New()
	syrupID := uuid.New()

	expander := NewRecipeExpander(&stubRecipeRepo{
		componentsOf: func(ctx context.Context, id uuid.UUID) ([]model.RecipeComponent, error) {
			require.Equal(t, cocktailID, id)
			return []model.RecipeComponent{
				{ProductRecipeID: cocktailID, ComponentProductID: juiceID, Amount: decimal.RequireFromString("0.5")},
				{ProductRecipeID: cocktailID, ComponentProductID: syrupID, Amount: decimal.RequireFromString("0.2")},
			}, nil
		},
	})

	postings, err := expander.Expand(context.Background(), cocktailID, decimal.NewFromInt(4))
	require.NoError(t, err)
	require.Len(t, postings, 2)

	// The composite product itself gets no posting.
	for _, p := range postings {
		assert.NotEqual(t, cocktailID, p.ProductID)
	}

	assert.Equal(t, juiceID, postings[0].ProductID)
	assert.True(t, postings[0].Quantity.Equal(decimal.RequireFromString("2.0")), "got %s", postings[0].Quantity)
	assert.Equal(t, syrupID, postings[1].ProductID)
	assert.True(t, postings[1].Quantity.Equal(decimal.RequireFromString("0.8")), "got %s", postings[1].Quantity)
}

func TestExpandZeroAmountComponent(t *testing.T) {
	t.Parallel()

	recipeID := uuid.New()
	garnishID := uuid.New()

	expander := NewRecipeExpander(&stubRecipeRepo{
		componentsOf: func(ctx context.Context, id uuid.UUID) ([]model.RecipeComponent, error) {
			return []model.RecipeComponent{
				{ProductRecipeID: recipeID, ComponentProductID: garnishID, Amount: decimal.Zero},
			}, nil
		},
	})

	postings, err := expander.Expand(context.Background(), recipeID, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.True(t, postings[0].Quantity.IsZero())
}

func TestExpandDoesNotRecurse(t *testing.T) {
	t.Parallel()

	recipeID := uuid.New()
	nestedCompositeID := uuid.New()
	calls := 0

	expander := NewRecipeExpander(&stubRecipeRepo{
		componentsOf: func(ctx context.Context, id uuid.UUID) ([]model.RecipeComponent, error) {
			calls++
			return []model.RecipeComponent{
				{ProductRecipeID: recipeID, ComponentProductID: nestedCompositeID, Amount: decimal.NewFromInt(2)},
			}, nil
		},
	})

	postings, err := expander.Expand(context.Background(), recipeID, decimal.NewFromInt(1))
	require.NoError(t, err)

	// One lookup only: the nested composite is posted as-is.
	assert.Equal(t, 1, calls)
	require.Len(t, postings, 1)
	assert.Equal(t, nestedCompositeID, postings[0].ProductID)
}

func TestExpandRepoError(t *testing.T) {
	t.Parallel()

	expander := NewRecipeExpander(&stubRecipeRepo{
		componentsOf: func(ctx context.Context, id uuid.UUID) ([]model.RecipeComponent, error) {
			return nil, errors.New("db gone")
		},
	})

	_, err := expander.Expand(context.Background(), uuid.New(), decimal.NewFromInt(1))
	require.Error(t, err)
}
