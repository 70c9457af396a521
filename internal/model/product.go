package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductCategory groups products for reporting purposes.
type ProductCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product represents an item tracked in the stockrooms. A product with
// recipe components is a composite; its consumption is decomposed into
// raw-component postings when a movement is accepted.
type Product struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SKU        string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name       string           `gorm:"type:varchar(255);not null" json:"name"`
	Unit       string           `gorm:"type:varchar(20)" json:"unit"` // kg, l, pcs...
	CategoryID *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category   *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`
}

// RecipeComponent links a composite product to one raw component.
// Amount is the multiplier per unit of the composite product.
// Components are not expanded recursively: a component that is itself
// a composite receives the posting as-is.
type RecipeComponent struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProductRecipeID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_recipe_component;not null" json:"product_recipe_id"`
	ComponentProductID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_recipe_component;not null" json:"component_product_id"`
	Amount             decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Recipe             *Product        `gorm:"foreignKey:ProductRecipeID" json:"-"`
	Component          *Product        `gorm:"foreignKey:ComponentProductID" json:"component,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
