package repository

import (
	"context"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionFilter narrows action listings.
type ActionFilter struct {
	Status        string
	ProductID     *uuid.UUID
	StorageRoomID *uuid.UUID
	CreatedBy     *uuid.UUID
}

type ActionRepository interface {
	Create(ctx context.Context, action *model.ActionRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ActionRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ActionRequest, error)
	List(ctx context.Context, filter ActionFilter, page, limit int) ([]model.ActionRequest, int64, error)
	// FinalizeIfPending moves the action to a terminal status with a
	// conditional update. It reports zero rows affected when a concurrent
	// caller finalized the action first, so the loser of the race can be
	// rejected instead of double-applying.
	FinalizeIfPending(ctx context.Context, id uuid.UUID, status string, changedBy uuid.UUID, changedAt time.Time) (int64, error)
}

type actionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) Create(ctx context.Context, action *model.ActionRequest) error {
	return GetDB(ctx, r.db).Create(action).Error
}

func (r *actionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ActionRequest, error) {
	var action model.ActionRequest
	if err := GetDB(ctx, r.db).First(&action, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *actionRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ActionRequest, error) {
	var action model.ActionRequest
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Preload("StorageRoom").
		Preload("Reason").
		Preload("Creator").
		Preload("Changer").
		First(&action, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *actionRepository) List(ctx context.Context, filter ActionFilter, page, limit int) ([]model.ActionRequest, int64, error) {
	var actions []model.ActionRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ActionRequest{})
	query = applyActionFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := applyActionFilter(db.Preload("Product").Preload("StorageRoom").Preload("Creator"), filter)
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&actions).Error; err != nil {
		return nil, 0, err
	}

	return actions, total, nil
}

func applyActionFilter(query *gorm.DB, filter ActionFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.StorageRoomID != nil {
		query = query.Where("storage_room_id = ?", *filter.StorageRoomID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	return query
}

func (r *actionRepository) FinalizeIfPending(ctx context.Context, id uuid.UUID, status string, changedBy uuid.UUID, changedAt time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.ActionRequest{}).
		Where("id = ? AND status = ?", id, model.ActionStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"changed_by": changedBy,
			"changed_at": changedAt,
		})
	return result.RowsAffected, result.Error
}
