package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateProduct   = "CREATE_PRODUCT"
	ActionUpdateProduct   = "UPDATE_PRODUCT"
	ActionDeleteProduct   = "DELETE_PRODUCT"
	ActionCreateComponent = "CREATE_RECIPE_COMPONENT"
	ActionDeleteComponent = "DELETE_RECIPE_COMPONENT"
	ActionCreateRoom      = "CREATE_STORAGE_ROOM"
	ActionUpdateRoom      = "UPDATE_STORAGE_ROOM"

	// Approval workflow actions
	ActionSubmitMovement  = "SUBMIT_MOVEMENT"
	ActionAcceptMovement  = "ACCEPT_MOVEMENT"
	ActionDeclineMovement = "DECLINE_MOVEMENT"
	ActionLedgerPosting   = "LEDGER_POSTING"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
