package repository

import (
	"context"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReasonRepository interface {
	Create(ctx context.Context, reason *model.MovementReason) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MovementReason, error)
	List(ctx context.Context) ([]model.MovementReason, error)
}

type reasonRepository struct {
	db *gorm.DB
}

func NewReasonRepository(db *gorm.DB) ReasonRepository {
	return &reasonRepository{db: db}
}

func (r *reasonRepository) Create(ctx context.Context, reason *model.MovementReason) error {
	return GetDB(ctx, r.db).Create(reason).Error
}

func (r *reasonRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.MovementReason, error) {
	var reason model.MovementReason
	if err := GetDB(ctx, r.db).First(&reason, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *reasonRepository) List(ctx context.Context) ([]model.MovementReason, error) {
	var reasons []model.MovementReason
	if err := GetDB(ctx, r.db).Order("code asc").Find(&reasons).Error; err != nil {
		return nil, err
	}
	return reasons, nil
}
