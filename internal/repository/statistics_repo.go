package repository

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticsRepository interface {
	FindByProductAndRoom(ctx context.Context, productID, storageRoomID uuid.UUID) (*model.StatisticsRecord, error)
	// Upsert inserts the record or, when the (product_id, storage_room_id)
	// key already exists, increments the stored total by the record's
	// quantity in a single statement. The increment happens inside the
	// database, so concurrent transactions cannot overwrite each other's
	// totals with stale reads.
	Upsert(ctx context.Context, record *model.StatisticsRecord) error
	List(ctx context.Context, storageRoomID *uuid.UUID, page, limit int) ([]model.StatisticsRecord, int64, error)
	TopMovedProducts(ctx context.Context, limit int) ([]model.ProductMovementRanking, error)
	RoomConsumption(ctx context.Context) ([]model.RoomConsumption, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) FindByProductAndRoom(ctx context.Context, productID, storageRoomID uuid.UUID) (*model.StatisticsRecord, error) {
	var record model.StatisticsRecord
	if err := GetDB(ctx, r.db).
		Where("product_id = ? AND storage_room_id = ?", productID, storageRoomID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *statisticsRepository) Upsert(ctx context.Context, record *model.StatisticsRecord) error {
	// total_quantity on the right-hand side refers to the stored row and
	// excluded.* to the attempted insert, on Postgres and sqlite alike.
	// The category is backfilled only while the stored one is NULL;
	// year/month/day keep the values from the first insert.
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "storage_room_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_quantity":      gorm.Expr("total_quantity + excluded.total_quantity"),
			"product_category_id": gorm.Expr("COALESCE(product_category_id, excluded.product_category_id)"),
			"updated_at":          time.Now(),
		}),
	}).Create(record).Error
}

func (r *statisticsRepository) List(ctx context.Context, storageRoomID *uuid.UUID, page, limit int) ([]model.StatisticsRecord, int64, error) {
	var records []model.StatisticsRecord
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.StatisticsRecord{})
	if storageRoomID != nil {
		query = query.Where("storage_room_id = ?", *storageRoomID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Product").Preload("StorageRoom").Preload("ProductCategory")
	if storageRoomID != nil {
		fetchQuery = fetchQuery.Where("storage_room_id = ?", *storageRoomID)
	}
	if err := fetchQuery.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *statisticsRepository) TopMovedProducts(ctx context.Context, limit int) ([]model.ProductMovementRanking, error) {
	var rankings []model.ProductMovementRanking
	if err := GetDB(ctx, r.db).Table("statistics_records").
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, SUM(statistics_records.total_quantity) as total_quantity").
		Joins("JOIN products ON products.id = statistics_records.product_id").
		Group("products.id, products.name, products.sku").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top moved products: %w", err)
	}
	return rankings, nil
}

func (r *statisticsRepository) RoomConsumption(ctx context.Context) ([]model.RoomConsumption, error) {
	var rooms []model.RoomConsumption
	if err := GetDB(ctx, r.db).Table("statistics_records").
		Select("storage_rooms.id as storage_room_id, storage_rooms.name as storage_room_name, SUM(statistics_records.total_quantity) as total_quantity, COUNT(statistics_records.product_id) as product_count").
		Joins("JOIN storage_rooms ON storage_rooms.id = statistics_records.storage_room_id").
		Group("storage_rooms.id, storage_rooms.name").
		Order("total_quantity DESC").
		Scan(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to query room consumption: %w", err)
	}
	return rooms, nil
}
