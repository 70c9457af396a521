package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type SubmitActionRequest struct {
	Quantity      string `json:"quantity" binding:"required"`
	ActionType    string `json:"action_type" binding:"required,oneof=ADD REMOVE"`
	ReasonID      string `json:"reason_id"`
	ProductID     string `json:"product_id" binding:"required"`
	StorageRoomID string `json:"storage_room_id" binding:"required"`
}

type ActionListFilter struct {
	Status        string
	ProductID     string
	StorageRoomID string
	CreatedBy     string
	Page          int
	Limit         int
}

type ActionResponse struct {
	ID              string  `json:"id"`
	Quantity        string  `json:"quantity"`
	Status          string  `json:"status"`
	ActionType      string  `json:"action_type"`
	ReasonID        *string `json:"reason_id"`
	ReasonName      string  `json:"reason_name,omitempty"`
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name,omitempty"`
	StorageRoomID   string  `json:"storage_room_id"`
	StorageRoomName string  `json:"storage_room_name,omitempty"`
	CreatedBy       string  `json:"created_by"`
	CreatorName     string  `json:"creator_name,omitempty"`
	ChangedBy       *string `json:"changed_by"`
	ChangedAt       *string `json:"changed_at"`
	CreatedAt       string  `json:"created_at"`
}

// DecisionNotifier receives accept/decline events for live dashboards.
type DecisionNotifier interface {
	BroadcastEvent(event string, data map[string]interface{})
}

// ActionService covers the movement-request lifecycle: submission, listing
// and the role-gated transition into a terminal state. Acceptance decomposes
// composite products into component postings and accumulates them into the
// statistics ledger.
type ActionService interface {
	SubmitAction(ctx context.Context, userID string, req SubmitActionRequest) (ActionResponse, error)
	GetAction(ctx context.Context, id string) (ActionResponse, error)
	ListActions(ctx context.Context, filter ActionListFilter) ([]ActionResponse, int64, error)
	Transition(ctx context.Context, actionID, requestedStatus, actorID string, role model.Role) (ActionResponse, error)
	CreateReason(ctx context.Context, code, name string) (*model.MovementReason, error)
	ListReasons(ctx context.Context) ([]model.MovementReason, error)
}

type actionService struct {
	actionRepo  repository.ActionRepository
	productRepo repository.ProductRepository
	roomRepo    repository.StorageRoomRepository
	reasonRepo  repository.ReasonRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	expander    RecipeExpander
	stats       StatisticsService
	notifier    DecisionNotifier
}

func NewActionService(
	actionRepo repository.ActionRepository,
	productRepo repository.ProductRepository,
	roomRepo repository.StorageRoomRepository,
	reasonRepo repository.ReasonRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	expander RecipeExpander,
	stats StatisticsService,
	notifier DecisionNotifier,
) ActionService {
	return &actionService{
		actionRepo:  actionRepo,
		productRepo: productRepo,
		roomRepo:    roomRepo,
		reasonRepo:  reasonRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		expander:    expander,
		stats:       stats,
		notifier:    notifier,
	}
}

// --- Submission ---

func (s *actionService) SubmitAction(ctx context.Context, userID string, req SubmitActionRequest) (ActionResponse, error) {
	creatorID, err := uuid.Parse(userID)
	if err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid user id")
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || !quantity.IsPositive() {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "quantity must be a positive decimal")
	}

	if req.ActionType != model.ActionTypeAdd && req.ActionType != model.ActionTypeRemove {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "action_type must be ADD or REMOVE")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid product_id")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "product does not exist")
	}

	roomID, err := uuid.Parse(req.StorageRoomID)
	if err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid storage_room_id")
	}
	if _, err := s.roomRepo.FindByID(ctx, roomID); err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "storage room does not exist")
	}

	var reasonID *uuid.UUID
	if req.ReasonID != "" {
		parsed, parseErr := uuid.Parse(req.ReasonID)
		if parseErr != nil {
			return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid reason_id")
		}
		if _, err := s.reasonRepo.FindByID(ctx, parsed); err != nil {
			return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "movement reason does not exist")
		}
		reasonID = &parsed
	}

	action := model.ActionRequest{
		Quantity:      quantity,
		Status:        model.ActionStatusPending,
		ActionType:    req.ActionType,
		ReasonID:      reasonID,
		ProductID:     productID,
		StorageRoomID: roomID,
		CreatedBy:     creatorID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.actionRepo.Create(txCtx, &action); createErr != nil {
			return fmt.Errorf("failed to create action request: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"action_type":     req.ActionType,
			"product_id":      req.ProductID,
			"storage_room_id": req.StorageRoomID,
			"quantity":        quantity.StringFixed(4),
		})
		audit := model.AuditLog{
			UserID:   &creatorID,
			Action:   model.ActionSubmitMovement,
			EntityID: action.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, &audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ActionResponse{}, err
	}

	return s.GetAction(ctx, action.ID.String())
}

func (s *actionService) GetAction(ctx context.Context, id string) (ActionResponse, error) {
	actionID, err := uuid.Parse(id)
	if err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid action id")
	}

	action, err := s.actionRepo.FindByIDWithRelations(ctx, actionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ActionResponse{}, apperr.New(apperr.KindNotFound, "action request not found")
		}
		return ActionResponse{}, err
	}

	return toActionResponse(action), nil
}

func (s *actionService) ListActions(ctx context.Context, filter ActionListFilter) ([]ActionResponse, int64, error) {
	repoFilter := repository.ActionFilter{Status: filter.Status}
	if filter.ProductID != "" {
		if id, err := uuid.Parse(filter.ProductID); err == nil {
			repoFilter.ProductID = &id
		}
	}
	if filter.StorageRoomID != "" {
		if id, err := uuid.Parse(filter.StorageRoomID); err == nil {
			repoFilter.StorageRoomID = &id
		}
	}
	if filter.CreatedBy != "" {
		if id, err := uuid.Parse(filter.CreatedBy); err == nil {
			repoFilter.CreatedBy = &id
		}
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	actions, total, err := s.actionRepo.List(ctx, repoFilter, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]ActionResponse, 0, len(actions))
	for i := range actions {
		result = append(result, toActionResponse(&actions[i]))
	}
	return result, total, nil
}

// --- Transition ---

// Transition finalizes a pending action request. Guards run in order with no
// mutation on failure: existence, terminal state, then role evaluation. The
// status write is committed before any ledger posting; on acceptance all
// postings are applied as a set and a failure there surfaces as a ledger
// inconsistency without rolling the status back.
func (s *actionService) Transition(ctx context.Context, actionID, requestedStatus, actorID string, role model.Role) (ActionResponse, error) {
	id, err := uuid.Parse(actionID)
	if err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid action id")
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return ActionResponse{}, apperr.New(apperr.KindInvalidArgument, "invalid actor id")
	}

	action, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ActionResponse{}, apperr.New(apperr.KindNotFound, "action request not found")
		}
		return ActionResponse{}, err
	}

	if action.IsFinalized() {
		return ActionResponse{}, apperr.New(apperr.KindFinalizedConflict, "action request is already %s", action.Status)
	}

	if err := evaluateRoleGate(action, requestedStatus, actor, role); err != nil {
		return ActionResponse{}, err
	}

	changedAt := time.Now()
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, finErr := s.actionRepo.FinalizeIfPending(txCtx, id, requestedStatus, actor, changedAt)
		if finErr != nil {
			return fmt.Errorf("failed to finalize action request: %w", finErr)
		}
		if rows == 0 {
			// A concurrent transition won the race on this action.
			return apperr.New(apperr.KindFinalizedConflict, "action request was finalized concurrently")
		}

		auditAction := model.ActionDeclineMovement
		if requestedStatus == model.ActionStatusAccepted {
			auditAction = model.ActionAcceptMovement
		}
		details, _ := json.Marshal(map[string]interface{}{
			"product_id":      action.ProductID.String(),
			"storage_room_id": action.StorageRoomID.String(),
			"quantity":        action.Quantity.StringFixed(4),
		})
		audit := model.AuditLog{
			UserID:   &actor,
			Action:   auditAction,
			EntityID: action.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, &audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ActionResponse{}, err
	}

	if requestedStatus == model.ActionStatusAccepted {
		if postErr := s.postAcceptedAction(ctx, action, actor); postErr != nil {
			// The status is already committed; report the incomplete ledger
			// distinctly so operators can reconcile.
			log.Printf("ERROR: ledger postings incomplete for action %s: %v", action.ID, postErr)
			return ActionResponse{}, apperr.Wrap(apperr.KindLedgerInconsistency, postErr,
				"action accepted but statistics postings are incomplete")
		}
	}

	if s.notifier != nil {
		s.notifier.BroadcastEvent("action_decided", map[string]interface{}{
			"action_id": action.ID.String(),
			"status":    requestedStatus,
		})
	}

	return s.GetAction(ctx, actionID)
}

// evaluateRoleGate enforces who may request which terminal status.
// Workers may only decline their own requests; managers and admins may
// accept or decline any pending request.
func evaluateRoleGate(action *model.ActionRequest, requestedStatus string, actor uuid.UUID, role model.Role) error {
	switch {
	case role == model.RoleWorker:
		if requestedStatus != model.ActionStatusDeclined {
			return apperr.New(apperr.KindInvalidArgument, "workers may only decline their own requests")
		}
		if action.CreatedBy != actor {
			return apperr.New(apperr.KindUnauthorized, "workers may only decline requests they created")
		}
		return nil
	case role.CanDecide():
		if requestedStatus != model.ActionStatusAccepted && requestedStatus != model.ActionStatusDeclined {
			return apperr.New(apperr.KindInvalidArgument, "requested status must be ACCEPTED or DECLINED")
		}
		return nil
	default:
		return apperr.New(apperr.KindUnauthorized, "role is not allowed to decide movement requests")
	}
}

// postAcceptedAction expands the movement into postings and accumulates all
// of them into the ledger within one transaction, so a partial set is never
// left behind.
func (s *actionService) postAcceptedAction(ctx context.Context, action *model.ActionRequest, actor uuid.UUID) error {
	postings, err := s.expander.Expand(ctx, action.ProductID, action.Quantity)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, posting := range postings {
			categoryID := s.lookupCategory(txCtx, posting.ProductID)
			if _, accErr := s.stats.Accumulate(txCtx, posting.ProductID, action.StorageRoomID, posting.Quantity, categoryID); accErr != nil {
				return fmt.Errorf("posting for product %s failed: %w", posting.ProductID, accErr)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"action_id": action.ID.String(),
			"postings":  len(postings),
		})
		audit := model.AuditLog{
			UserID:   &actor,
			Action:   model.ActionLedgerPosting,
			EntityID: action.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, &audit)
	})
}

// lookupCategory resolves the category for backfilling the ledger record.
// A missing product is tolerated; the record simply keeps a nil category.
func (s *actionService) lookupCategory(ctx context.Context, productID uuid.UUID) *uuid.UUID {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil
	}
	return product.CategoryID
}

// --- Movement reasons ---

func (s *actionService) CreateReason(ctx context.Context, code, name string) (*model.MovementReason, error) {
	if code == "" || name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "code and name are required")
	}
	reason := model.MovementReason{Code: code, Name: name}
	if err := s.reasonRepo.Create(ctx, &reason); err != nil {
		return nil, err
	}
	return &reason, nil
}

func (s *actionService) ListReasons(ctx context.Context) ([]model.MovementReason, error) {
	return s.reasonRepo.List(ctx)
}

// --- Helpers ---

func toActionResponse(a *model.ActionRequest) ActionResponse {
	resp := ActionResponse{
		ID:            a.ID.String(),
		Quantity:      a.Quantity.StringFixed(4),
		Status:        a.Status,
		ActionType:    a.ActionType,
		ProductID:     a.ProductID.String(),
		StorageRoomID: a.StorageRoomID.String(),
		CreatedBy:     a.CreatedBy.String(),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}

	if a.ReasonID != nil {
		id := a.ReasonID.String()
		resp.ReasonID = &id
	}
	if a.Reason != nil {
		resp.ReasonName = a.Reason.Name
	}
	if a.Product != nil {
		resp.ProductName = a.Product.Name
	}
	if a.StorageRoom != nil {
		resp.StorageRoomName = a.StorageRoom.Name
	}
	if a.Creator != nil {
		resp.CreatorName = a.Creator.Username
	}
	if a.ChangedBy != nil {
		id := a.ChangedBy.String()
		resp.ChangedBy = &id
	}
	if a.ChangedAt != nil {
		ts := a.ChangedAt.Format(time.RFC3339)
		resp.ChangedAt = &ts
	}

	return resp
}
