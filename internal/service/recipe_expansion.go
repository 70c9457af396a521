package service

import (
	"context"
	"fmt"

	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Posting is one ledger entry produced by expanding an accepted movement:
// the target product and the quantity to accumulate for it.
type Posting struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// RecipeExpander turns one (product, quantity) movement into the postings
// the ledger should receive.
type RecipeExpander interface {
	Expand(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) ([]Posting, error)
}

type recipeExpander struct {
	recipeRepo repository.RecipeRepository
}

func NewRecipeExpander(recipeRepo repository.RecipeRepository) RecipeExpander {
	return &recipeExpander{recipeRepo: recipeRepo}
}

// Expand resolves the recipe breakdown of productID. A composite product
// yields one posting per component (quantity x amount) and none for itself.
// An atomic product yields a single identity posting. Components are not
// expanded recursively; a zero-amount component still yields a zero posting.
func (e *recipeExpander) Expand(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) ([]Posting, error) {
	components, err := e.recipeRepo.ComponentsOf(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe components: %w", err)
	}

	if len(components) == 0 {
		return []Posting{{ProductID: productID, Quantity: quantity}}, nil
	}

	postings := make([]Posting, 0, len(components))
	for _, c := range components {
		postings = append(postings, Posting{
			ProductID: c.ComponentProductID,
			Quantity:  quantity.Mul(c.Amount),
		})
	}
	return postings, nil
}
