package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionStatus constants. PENDING is the initial state; ACCEPTED and
// DECLINED are terminal. A request changes status exactly once.
const (
	ActionStatusPending  = "PENDING"
	ActionStatusAccepted = "ACCEPTED"
	ActionStatusDeclined = "DECLINED"
)

// ActionType constants. The type records movement direction for reporting;
// it does not flip the ledger direction — every accepted action increases
// the same running total.
const (
	ActionTypeAdd    = "ADD"
	ActionTypeRemove = "REMOVE"
)

// MovementReason is optional master data explaining why a movement happened
// (spoilage, delivery, transfer...).
type MovementReason struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActionRequest is a requested inventory movement awaiting approval.
// It is created PENDING by the submission flow and finalized exactly once
// by the approval workflow; it is never deleted.
type ActionRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ActionType    string          `gorm:"type:varchar(20);not null" json:"action_type"` // ADD, REMOVE
	ReasonID      *uuid.UUID      `gorm:"type:uuid;index" json:"reason_id"`
	Reason        *MovementReason `gorm:"foreignKey:ReasonID" json:"reason,omitempty"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	StorageRoomID uuid.UUID       `gorm:"type:uuid;not null;index" json:"storage_room_id"`
	StorageRoom   *StorageRoom    `gorm:"foreignKey:StorageRoomID" json:"storage_room,omitempty"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	Creator       *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	ChangedBy     *uuid.UUID      `gorm:"type:uuid" json:"changed_by"`
	Changer       *User           `gorm:"foreignKey:ChangedBy" json:"changer,omitempty"`
	ChangedAt     *time.Time      `json:"changed_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsFinalized reports whether the request already reached a terminal status.
func (a *ActionRequest) IsFinalized() bool {
	return a.Status != ActionStatusPending
}
