package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatisticsRecord is the running consumption total for one
// (product, storage room) pair. The composite unique index guarantees at
// most one record per pair. Despite the creation-date fields the record is
// not scoped to a calendar period: it accumulates indefinitely and the
// stored date is never re-bucketed on later updates.
type StatisticsRecord struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID         uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_stats_product_room;not null" json:"product_id"`
	Product           *Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	StorageRoomID     uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_stats_product_room;not null" json:"storage_room_id"`
	StorageRoom       *StorageRoom     `gorm:"foreignKey:StorageRoomID" json:"storage_room,omitempty"`
	TotalQuantity     decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"total_quantity"`
	ProductCategoryID *uuid.UUID       `gorm:"type:uuid;index" json:"product_category_id"`
	ProductCategory   *ProductCategory `gorm:"foreignKey:ProductCategoryID" json:"product_category,omitempty"`
	Year              int              `gorm:"not null" json:"year"`
	Month             int              `gorm:"not null" json:"month"`
	Day               int              `gorm:"not null" json:"day"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ProductMovementRanking represents a ranked product based on accumulated quantity
type ProductMovementRanking struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductSKU    string          `json:"product_sku"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// RoomConsumption aggregates accumulated totals per storage room
type RoomConsumption struct {
	StorageRoomID   string          `json:"storage_room_id"`
	StorageRoomName string          `json:"storage_room_name"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	ProductCount    int             `json:"product_count"`
}
