package service

import (
	"context"
	"time"

	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatisticsRecordResponse is the API shape of one ledger record.
type StatisticsRecordResponse struct {
	ID                string  `json:"id"`
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name,omitempty"`
	StorageRoomID     string  `json:"storage_room_id"`
	StorageRoomName   string  `json:"storage_room_name,omitempty"`
	TotalQuantity     string  `json:"total_quantity"`
	ProductCategoryID *string `json:"product_category_id"`
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	Day               int     `json:"day"`
	UpdatedAt         string  `json:"updated_at"`
}

// StatisticsOverview aggregates ledger totals for the dashboard.
type StatisticsOverview struct {
	TopMovedProducts []model.ProductMovementRanking `json:"top_moved_products"`
	RoomConsumption  []model.RoomConsumption        `json:"room_consumption"`
}

// StatisticsService is the running-total ledger keyed by
// (product, storage room). Accumulate is a single atomic
// insert-or-increment, so concurrent callers on the same key lose no
// update and create no duplicate record, even when each call runs in
// its own database transaction.
type StatisticsService interface {
	Accumulate(ctx context.Context, productID, storageRoomID uuid.UUID, quantity decimal.Decimal, categoryID *uuid.UUID) (*model.StatisticsRecord, error)
	ListRecords(ctx context.Context, storageRoomID *uuid.UUID, page, limit int) ([]StatisticsRecordResponse, int64, error)
	Overview(ctx context.Context) (StatisticsOverview, error)
}

type statisticsService struct {
	statsRepo repository.StatisticsRepository
}

func NewStatisticsService(statsRepo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{statsRepo: statsRepo}
}

// Accumulate adds quantity to the running total of (productID, storageRoomID),
// creating the record on first use. The category id is backfilled once if the
// record has none. A read-then-write here would lose postings when two accept
// transactions race on one key, so the whole find-or-create-then-add is pushed
// into a single upsert and the database applies the increment against the
// committed row.
func (s *statisticsService) Accumulate(ctx context.Context, productID, storageRoomID uuid.UUID, quantity decimal.Decimal, categoryID *uuid.UUID) (*model.StatisticsRecord, error) {
	if quantity.IsNegative() {
		return nil, apperr.New(apperr.KindInvalidArgument, "quantity must not be negative")
	}

	now := time.Now()
	record := &model.StatisticsRecord{
		ProductID:         productID,
		StorageRoomID:     storageRoomID,
		TotalQuantity:     quantity,
		ProductCategoryID: categoryID,
		Year:              now.Year(),
		Month:             int(now.Month()),
		Day:               now.Day(),
	}
	if err := s.statsRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return s.statsRepo.FindByProductAndRoom(ctx, productID, storageRoomID)
}

func (s *statisticsService) ListRecords(ctx context.Context, storageRoomID *uuid.UUID, page, limit int) ([]StatisticsRecordResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	records, total, err := s.statsRepo.List(ctx, storageRoomID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]StatisticsRecordResponse, 0, len(records))
	for _, r := range records {
		res = append(res, toStatisticsResponse(r))
	}
	return res, total, nil
}

func (s *statisticsService) Overview(ctx context.Context) (StatisticsOverview, error) {
	top, err := s.statsRepo.TopMovedProducts(ctx, 5)
	if err != nil {
		return StatisticsOverview{}, err
	}

	rooms, err := s.statsRepo.RoomConsumption(ctx)
	if err != nil {
		return StatisticsOverview{}, err
	}

	return StatisticsOverview{
		TopMovedProducts: top,
		RoomConsumption:  rooms,
	}, nil
}

func toStatisticsResponse(r model.StatisticsRecord) StatisticsRecordResponse {
	res := StatisticsRecordResponse{
		ID:            r.ID.String(),
		ProductID:     r.ProductID.String(),
		StorageRoomID: r.StorageRoomID.String(),
		TotalQuantity: r.TotalQuantity.StringFixed(4),
		Year:          r.Year,
		Month:         r.Month,
		Day:           r.Day,
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Product != nil {
		res.ProductName = r.Product.Name
	}
	if r.StorageRoom != nil {
		res.StorageRoomName = r.StorageRoom.Name
	}
	if r.ProductCategoryID != nil {
		id := r.ProductCategoryID.String()
		res.ProductCategoryID = &id
	}
	return res
}
