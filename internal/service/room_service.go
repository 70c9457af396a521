package service

import (
	"context"
	"errors"
	"fmt"

	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateRoomRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

type UpdateRoomRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Active   *bool  `json:"active"`
}

type RoomResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Active   bool   `json:"active"`
}

type StorageRoomService interface {
	CreateRoom(ctx context.Context, userID string, req CreateRoomRequest) (RoomResponse, error)
	UpdateRoom(ctx context.Context, userID, id string, req UpdateRoomRequest) (RoomResponse, error)
	GetRoom(ctx context.Context, id string) (RoomResponse, error)
	ListRooms(ctx context.Context, page, limit int) ([]RoomResponse, int64, error)
}

type storageRoomService struct {
	roomRepo  repository.StorageRoomRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewStorageRoomService(
	roomRepo repository.StorageRoomRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) StorageRoomService {
	return &storageRoomService{roomRepo: roomRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *storageRoomService) CreateRoom(ctx context.Context, userID string, req CreateRoomRequest) (RoomResponse, error) {
	if _, err := s.roomRepo.FindByCode(ctx, req.Code); err == nil {
		return RoomResponse{}, apperr.New(apperr.KindInvalidArgument, "room code already exists")
	}

	room := model.StorageRoom{
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
		Active:   true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.roomRepo.Create(txCtx, &room); createErr != nil {
			return fmt.Errorf("failed to create storage room: %w", createErr)
		}

		var actor *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			actor = &parsed
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionCreateRoom,
			EntityID:   room.ID.String(),
			EntityName: room.Name,
		})
	})
	if err != nil {
		return RoomResponse{}, err
	}

	return toRoomResponse(&room), nil
}

func (s *storageRoomService) UpdateRoom(ctx context.Context, userID, id string, req UpdateRoomRequest) (RoomResponse, error) {
	roomID, err := uuid.Parse(id)
	if err != nil {
		return RoomResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid room id")
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoomResponse{}, apperr.New(apperr.KindNotFound, "storage room not found")
		}
		return RoomResponse{}, err
	}

	if req.Name != "" {
		room.Name = req.Name
	}
	if req.Location != "" {
		room.Location = req.Location
	}
	if req.Active != nil {
		room.Active = *req.Active
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.roomRepo.Update(txCtx, room); updateErr != nil {
			return fmt.Errorf("failed to update storage room: %w", updateErr)
		}

		var actor *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			actor = &parsed
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionUpdateRoom,
			EntityID:   room.ID.String(),
			EntityName: room.Name,
		})
	})
	if err != nil {
		return RoomResponse{}, err
	}

	return toRoomResponse(room), nil
}

func (s *storageRoomService) GetRoom(ctx context.Context, id string) (RoomResponse, error) {
	roomID, err := uuid.Parse(id)
	if err != nil {
		return RoomResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid room id")
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoomResponse{}, apperr.New(apperr.KindNotFound, "storage room not found")
		}
		return RoomResponse{}, err
	}
	return toRoomResponse(room), nil
}

func (s *storageRoomService) ListRooms(ctx context.Context, page, limit int) ([]RoomResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	rooms, total, err := s.roomRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		res = append(res, toRoomResponse(&rooms[i]))
	}
	return res, total, nil
}

func toRoomResponse(r *model.StorageRoom) RoomResponse {
	return RoomResponse{
		ID:       r.ID.String(),
		Code:     r.Code,
		Name:     r.Name,
		Location: r.Location,
		Active:   r.Active,
	}
}
