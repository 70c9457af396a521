package service

import (
	"context"
	"sync"
	"testing"

	"stockroom/internal/model"
	"stockroom/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStatsRepo is an in-memory StatisticsRepository guarded by a mutex so the
// concurrency tests can hammer it from many goroutines.
type memStatsRepo struct {
	mu      sync.Mutex
	records map[string]*model.StatisticsRecord
	creates int
	updates int
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{records: make(map[string]*model.StatisticsRecord)}
}

func statsKey(productID, roomID uuid.UUID) string {
	return productID.String() + "|" + roomID.String()
}

func (m *memStatsRepo) FindByProductAndRoom(ctx context.Context, productID, storageRoomID uuid.UUID) (*model.StatisticsRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[statsKey(productID, storageRoomID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStatsRepo) Upsert(ctx context.Context, record *model.StatisticsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statsKey(record.ProductID, record.StorageRoomID)
	if existing, ok := m.records[key]; ok {
		existing.TotalQuantity = existing.TotalQuantity.Add(record.TotalQuantity)
		if existing.ProductCategoryID == nil {
			existing.ProductCategoryID = record.ProductCategoryID
		}
		m.updates++
		return nil
	}
	record.ID = uuid.New()
	cp := *record
	m.records[key] = &cp
	m.creates++
	return nil
}

func (m *memStatsRepo) List(ctx context.Context, storageRoomID *uuid.UUID, page, limit int) ([]model.StatisticsRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StatisticsRecord
	for _, r := range m.records {
		if storageRoomID != nil && r.StorageRoomID != *storageRoomID {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *memStatsRepo) TopMovedProducts(ctx context.Context, limit int) ([]model.ProductMovementRanking, error) {
	return nil, nil
}

func (m *memStatsRepo) RoomConsumption(ctx context.Context) ([]model.RoomConsumption, error) {
	return nil, nil
}

func TestAccumulateCreatesOnFirstUse(t *testing.T) {
	t.Parallel()

	repo := newMemStatsRepo()
	svc := NewStatisticsService(repo)

	productID := uuid.New()
	roomID := uuid.New()
	categoryID := uuid.New()

	record, err := svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(3), &categoryID)
	require.NoError(t, err)
	assert.True(t, record.TotalQuantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, &categoryID, record.ProductCategoryID)
	assert.Equal(t, 1, repo.creates)
	assert.NotZero(t, record.Year)
}

func TestAccumulateIncrementsExisting(t *testing.T) {
	t.Parallel()

	repo := newMemStatsRepo()
	svc := NewStatisticsService(repo)

	productID := uuid.New()
	roomID := uuid.New()

	_, err := svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(3), nil)
	require.NoError(t, err)

	record, err := svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(2), nil)
	require.NoError(t, err)

	assert.True(t, record.TotalQuantity.Equal(decimal.NewFromInt(5)), "got %s", record.TotalQuantity)
	assert.Equal(t, 1, repo.creates, "second call must reuse the record")
	assert.Equal(t, 1, repo.updates)
}

func TestAccumulateBackfillsCategoryOnce(t *testing.T) {
	t.Parallel()

	repo := newMemStatsRepo()
	svc := NewStatisticsService(repo)

	productID := uuid.New()
	roomID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	_, err := svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(1), nil)
	require.NoError(t, err)

	record, err := svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(1), &first)
	require.NoError(t, err)
	require.NotNil(t, record.ProductCategoryID)
	assert.Equal(t, first, *record.ProductCategoryID)

	// A later category does not overwrite the backfilled one.
	record, err = svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(1), &second)
	require.NoError(t, err)
	assert.Equal(t, first, *record.ProductCategoryID)
}

func TestAccumulateRejectsNegativeQuantity(t *testing.T) {
	t.Parallel()

	svc := NewStatisticsService(newMemStatsRepo())

	_, err := svc.Accumulate(context.Background(), uuid.New(), uuid.New(), decimal.NewFromInt(-1), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestAccumulateZeroQuantity(t *testing.T) {
	t.Parallel()

	repo := newMemStatsRepo()
	svc := NewStatisticsService(repo)

	record, err := svc.Accumulate(context.Background(), uuid.New(), uuid.New(), decimal.Zero, nil)
	require.NoError(t, err)
	assert.True(t, record.TotalQuantity.IsZero())
	assert.Equal(t, 1, repo.creates)
}

func TestAccumulateConcurrentSameKey(t *testing.T) {
	t.Parallel()

	repo := newMemStatsRepo()
	svc := NewStatisticsService(repo)

	productID := uuid.New()
	roomID := uuid.New()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(int64(n+1)), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	record, err := repo.FindByProductAndRoom(context.Background(), productID, roomID)
	require.NoError(t, err)

	// Sum of 1..50, with exactly one record created.
	want := decimal.NewFromInt(workers * (workers + 1) / 2)
	assert.True(t, record.TotalQuantity.Equal(want), "want %s got %s", want, record.TotalQuantity)
	assert.Equal(t, 1, repo.creates)
}

func TestAccumulateConcurrentDistinctKeys(t *testing.T) {
	t.Parallel()

	repo := newMemStatsRepo()
	svc := NewStatisticsService(repo)

	roomID := uuid.New()
	products := make([]uuid.UUID, 10)
	for i := range products {
		products[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for _, p := range products {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(productID uuid.UUID) {
				defer wg.Done()
				_, err := svc.Accumulate(context.Background(), productID, roomID, decimal.NewFromInt(2), nil)
				assert.NoError(t, err)
			}(p)
		}
	}
	wg.Wait()

	assert.Equal(t, len(products), repo.creates)
	for _, p := range products {
		record, err := repo.FindByProductAndRoom(context.Background(), p, roomID)
		require.NoError(t, err)
		assert.True(t, record.TotalQuantity.Equal(decimal.NewFromInt(10)))
	}
}

// stagedLedger models read-committed isolation for the statistics table:
// writes made inside a transaction stay private to it and reach the shared
// table only when the transaction commits. memStatsRepo cannot reproduce
// lost updates between overlapping accept transactions; this can.
type stagedLedger struct {
	mu        sync.Mutex
	committed map[string]*model.StatisticsRecord
	creates   int
}

func newStagedLedger() *stagedLedger {
	return &stagedLedger{committed: make(map[string]*model.StatisticsRecord)}
}

func (l *stagedLedger) commit(tx *stagedTx) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for _, op := range tx.ops {
		key := statsKey(op.ProductID, op.StorageRoomID)
		if existing, ok := l.committed[key]; ok {
			existing.TotalQuantity = existing.TotalQuantity.Add(op.TotalQuantity)
			if existing.ProductCategoryID == nil {
				existing.ProductCategoryID = op.ProductCategoryID
			}
			continue
		}
		cp := op
		cp.ID = uuid.New()
		l.committed[key] = &cp
		l.creates++
	}
}

func (l *stagedLedger) get(productID, storageRoomID uuid.UUID) (*model.StatisticsRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.committed[statsKey(productID, storageRoomID)]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

type stagedTxKey struct{}

type stagedTx struct {
	mu  sync.Mutex
	ops []model.StatisticsRecord
}

// stagedTxManager commits staged ledger writes only after fn succeeds.
// beforeCommit, when set, runs before any commit that carries ledger writes,
// so a test can hold several transactions open past each other's window.
type stagedTxManager struct {
	ledger       *stagedLedger
	beforeCommit func()
}

func (m *stagedTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	tx := &stagedTx{}
	if err := fn(context.WithValue(ctx, stagedTxKey{}, tx)); err != nil {
		return err
	}
	if m.beforeCommit != nil && len(tx.ops) > 0 {
		m.beforeCommit()
	}
	m.ledger.commit(tx)
	return nil
}

// stagedStatsRepo is the StatisticsRepository half of the staged ledger.
// Upsert records the increment against the transaction, mirroring how the
// real repository pushes the addition into the database rather than writing
// an absolute total computed from a read.
type stagedStatsRepo struct {
	ledger *stagedLedger
}

func (r *stagedStatsRepo) Upsert(ctx context.Context, record *model.StatisticsRecord) error {
	if tx, ok := ctx.Value(stagedTxKey{}).(*stagedTx); ok {
		tx.mu.Lock()
		tx.ops = append(tx.ops, *record)
		tx.mu.Unlock()
		return nil
	}
	tx := &stagedTx{ops: []model.StatisticsRecord{*record}}
	r.ledger.commit(tx)
	return nil
}

func (r *stagedStatsRepo) FindByProductAndRoom(ctx context.Context, productID, storageRoomID uuid.UUID) (*model.StatisticsRecord, error) {
	base, ok := r.ledger.get(productID, storageRoomID)
	if tx, txOK := ctx.Value(stagedTxKey{}).(*stagedTx); txOK {
		tx.mu.Lock()
		for _, op := range tx.ops {
			if op.ProductID != productID || op.StorageRoomID != storageRoomID {
				continue
			}
			if base == nil {
				cp := op
				base = &cp
				ok = true
				continue
			}
			base.TotalQuantity = base.TotalQuantity.Add(op.TotalQuantity)
		}
		tx.mu.Unlock()
	}
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return base, nil
}

func (r *stagedStatsRepo) List(ctx context.Context, storageRoomID *uuid.UUID, page, limit int) ([]model.StatisticsRecord, int64, error) {
	return nil, 0, nil
}

func (r *stagedStatsRepo) TopMovedProducts(ctx context.Context, limit int) ([]model.ProductMovementRanking, error) {
	return nil, nil
}

func (r *stagedStatsRepo) RoomConsumption(ctx context.Context) ([]model.RoomConsumption, error) {
	return nil, nil
}

func TestAccumulateOverlappingTransactionsConverge(t *testing.T) {
	t.Parallel()

	ledger := newStagedLedger()
	svc := NewStatisticsService(&stagedStatsRepo{ledger: ledger})

	productID := uuid.New()
	roomID := uuid.New()

	// Both transactions post their quantity before either commits, so each
	// runs against a table that does not yet hold the other's write.
	var window sync.WaitGroup
	window.Add(2)
	tm := &stagedTxManager{ledger: ledger, beforeCommit: func() {
		window.Done()
		window.Wait()
	}}

	var wg sync.WaitGroup
	for _, q := range []int64{3, 2} {
		wg.Add(1)
		go func(q int64) {
			defer wg.Done()
			err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
				_, err := svc.Accumulate(txCtx, productID, roomID, decimal.NewFromInt(q), nil)
				return err
			})
			assert.NoError(t, err)
		}(q)
	}
	wg.Wait()

	record, ok := ledger.get(productID, roomID)
	require.True(t, ok)
	assert.True(t, record.TotalQuantity.Equal(decimal.NewFromInt(5)),
		"quantities 3 and 2 must converge to 5, got %s", record.TotalQuantity)
	assert.Equal(t, 1, ledger.creates, "the overlapping first posting must not duplicate the record")
}

func TestAccumulateManyTransactionsSameKey(t *testing.T) {
	t.Parallel()

	ledger := newStagedLedger()
	svc := NewStatisticsService(&stagedStatsRepo{ledger: ledger})
	tm := &stagedTxManager{ledger: ledger}

	productID := uuid.New()
	roomID := uuid.New()

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
				_, err := svc.Accumulate(txCtx, productID, roomID, decimal.NewFromInt(int64(n+1)), nil)
				return err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	record, ok := ledger.get(productID, roomID)
	require.True(t, ok)
	want := decimal.NewFromInt(workers * (workers + 1) / 2)
	assert.True(t, record.TotalQuantity.Equal(want), "want %s got %s", want, record.TotalQuantity)
	assert.Equal(t, 1, ledger.creates)
}
