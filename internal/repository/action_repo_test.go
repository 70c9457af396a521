package repository

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedMovementFixtures(t *testing.T, db *gorm.DB) (productID, roomID, userID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	user := model.User{Username: "worker1", Email: "worker1@example.com", Password: "x", Role: model.RoleWorker}
	require.NoError(t, db.WithContext(ctx).Create(&user).Error)

	product := model.Product{SKU: "MILK-1", Name: "Milk", Unit: "l"}
	require.NoError(t, db.WithContext(ctx).Create(&product).Error)

	room := model.StorageRoom{Code: "FRIDGE", Name: "Fridge", Active: true}
	require.NoError(t, db.WithContext(ctx).Create(&room).Error)

	return product.ID, room.ID, user.ID
}

func TestActionRepositoryCreateAndFind(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewActionRepository(db)
	ctx := context.Background()
	productID, roomID, userID := seedMovementFixtures(t, db)

	action := model.ActionRequest{
		Quantity:      decimal.NewFromInt(3),
		Status:        model.ActionStatusPending,
		ActionType:    model.ActionTypeAdd,
		ProductID:     productID,
		StorageRoomID: roomID,
		CreatedBy:     userID,
	}
	require.NoError(t, repo.Create(ctx, &action))
	require.NotEqual(t, uuid.Nil, action.ID)

	found, err := repo.FindByID(ctx, action.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionStatusPending, found.Status)
	assert.True(t, found.Quantity.Equal(decimal.NewFromInt(3)))

	withRelations, err := repo.FindByIDWithRelations(ctx, action.ID)
	require.NoError(t, err)
	require.NotNil(t, withRelations.Product)
	assert.Equal(t, "Milk", withRelations.Product.Name)
	require.NotNil(t, withRelations.Creator)
	assert.Equal(t, "worker1", withRelations.Creator.Username)
}

func TestActionRepositoryFindMissing(t *testing.T) {
	t.Parallel()

	repo := NewActionRepository(openTestDB(t))
	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFinalizeIfPendingWinsOnce(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewActionRepository(db)
	ctx := context.Background()
	productID, roomID, userID := seedMovementFixtures(t, db)

	action := model.ActionRequest{
		Quantity:      decimal.NewFromInt(1),
		Status:        model.ActionStatusPending,
		ActionType:    model.ActionTypeAdd,
		ProductID:     productID,
		StorageRoomID: roomID,
		CreatedBy:     userID,
	}
	require.NoError(t, repo.Create(ctx, &action))

	manager := uuid.New()
	now := time.Now()

	rows, err := repo.FinalizeIfPending(ctx, action.ID, model.ActionStatusAccepted, manager, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// The losing caller matches zero rows instead of overwriting the decision.
	rows, err = repo.FinalizeIfPending(ctx, action.ID, model.ActionStatusDeclined, uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err := repo.FindByID(ctx, action.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionStatusAccepted, found.Status)
	require.NotNil(t, found.ChangedBy)
	assert.Equal(t, manager, *found.ChangedBy)
	assert.NotNil(t, found.ChangedAt)
}

func TestActionRepositoryListFilters(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewActionRepository(db)
	ctx := context.Background()
	productID, roomID, userID := seedMovementFixtures(t, db)

	otherProduct := model.Product{SKU: "SUGAR-1", Name: "Sugar", Unit: "kg"}
	require.NoError(t, db.WithContext(ctx).Create(&otherProduct).Error)

	for _, p := range []uuid.UUID{productID, productID, otherProduct.ID} {
		a := model.ActionRequest{
			Quantity:      decimal.NewFromInt(1),
			Status:        model.ActionStatusPending,
			ActionType:    model.ActionTypeAdd,
			ProductID:     p,
			StorageRoomID: roomID,
			CreatedBy:     userID,
		}
		require.NoError(t, repo.Create(ctx, &a))
	}

	all, total, err := repo.List(ctx, ActionFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	filtered, total, err := repo.List(ctx, ActionFilter{ProductID: &productID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, filtered, 2)

	none, total, err := repo.List(ctx, ActionFilter{Status: model.ActionStatusAccepted}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, none)
}
