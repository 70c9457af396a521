package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StorageRoom is a physical location movements are booked against.
type StorageRoom struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Location  string         `gorm:"type:varchar(255)" json:"location"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
