package repository

import (
	"context"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StorageRoomRepository interface {
	Create(ctx context.Context, room *model.StorageRoom) error
	Update(ctx context.Context, room *model.StorageRoom) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StorageRoom, error)
	FindByCode(ctx context.Context, code string) (*model.StorageRoom, error)
	List(ctx context.Context, page, limit int) ([]model.StorageRoom, int64, error)
}

type storageRoomRepository struct {
	db *gorm.DB
}

func NewStorageRoomRepository(db *gorm.DB) StorageRoomRepository {
	return &storageRoomRepository{db: db}
}

func (r *storageRoomRepository) Create(ctx context.Context, room *model.StorageRoom) error {
	return GetDB(ctx, r.db).Create(room).Error
}

func (r *storageRoomRepository) Update(ctx context.Context, room *model.StorageRoom) error {
	return GetDB(ctx, r.db).Save(room).Error
}

func (r *storageRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StorageRoom, error) {
	var room model.StorageRoom
	if err := GetDB(ctx, r.db).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *storageRoomRepository) FindByCode(ctx context.Context, code string) (*model.StorageRoom, error) {
	var room model.StorageRoom
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *storageRoomRepository) List(ctx context.Context, page, limit int) ([]model.StorageRoom, int64, error) {
	var rooms []model.StorageRoom
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.StorageRoom{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("code asc").Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}
