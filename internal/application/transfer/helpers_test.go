package transfer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCompanyID = "00000000-0000-0000-0000-000000000002"

var (
	requester = entity.Principal{ID: "u-staff", Name: "Staff", Email: "staff@example.com"}
	approver  = entity.Principal{ID: "u-admin", Name: "Admin", Email: "admin@example.com"}
)

// staticSettings SettingsProvider fijo para pruebas.
type staticSettings struct {
	settings entity.ApprovalSettings
}

func (s staticSettings) Current(_ context.Context, companyID string) (entity.ApprovalSettings, error) {
	out := s.settings
	out.CompanyID = companyID
	return out, nil
}

func defaultSettings() staticSettings {
	return staticSettings{settings: entity.ApprovalSettings{RequireApproval: true, AutoApproveBelow: 10}}
}

// failingRunner envuelve el store y hace fallar las primeras failures ejecuciones
// después de que fn escribió todo, simulando un commit que no se aplica.
type failingRunner struct {
	store    *memory.Store
	mu       sync.Mutex
	failures int
	calls    int
}

var errSimulatedCommit = errors.New("commit simulado fallido")

func (r *failingRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockItemRepository,
	requestRepo repository.StockRequestRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	return r.store.Run(ctx, func(
		stockRepo repository.StockItemRepository,
		requestRepo repository.StockRequestRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		if err := fn(stockRepo, requestRepo, transferRepo); err != nil {
			return err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls++
		if r.calls <= r.failures {
			return errSimulatedCommit
		}
		return nil
	})
}

// recordingQueue FailureQueue que guarda lo encolado.
type recordingQueue struct {
	mu   sync.Mutex
	anns []transfer.FailureAnnotation
}

func (q *recordingQueue) EnqueueFailure(_ context.Context, ann transfer.FailureAnnotation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.anns = append(q.anns, ann)
	return nil
}

type fixture struct {
	store    *memory.Store
	executor *transfer.ExecutorUseCase
	intake   *transfer.IntakeUseCase
	history  *transfer.HistoryUseCase
}

func newFixture(t *testing.T, settings staticSettings, runner transfer.TxRunner, queue transfer.FailureQueue) *fixture {
	t.Helper()
	store := memory.NewStore()
	if fr, ok := runner.(*failingRunner); ok {
		fr.store = store
	}
	if runner == nil {
		runner = store
	}
	log := zerolog.Nop()
	executor := transfer.NewExecutorUseCase(runner, store.StockRequests(), settings, queue, log)
	return &fixture{
		store:    store,
		executor: executor,
		intake:   transfer.NewIntakeUseCase(store.StockItems(), store.StockRequests(), settings, executor, log),
		history:  transfer.NewHistoryUseCase(store.StockRequests(), store.StockTransfers(), settings),
	}
}

// seedStock crea una línea activa de stock.
func (f *fixture) seedStock(t *testing.T, itemCode, location string, qty int) *entity.StockItem {
	t.Helper()
	now := time.Now()
	item := &entity.StockItem{
		ID:          itemCode + "@" + location,
		CompanyID:   testCompanyID,
		ItemCode:    itemCode,
		Brand:       "Tecno",
		Model:       "Spark 10",
		Category:    "phones",
		Quantity:    qty,
		CostPrice:   decimal.NewFromInt(120000),
		RetailPrice: decimal.NewFromInt(165000),
		Location:    location,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.store.StockItems().Create(context.Background(), item))
	return item
}

// seedRequest crea una solicitud pending sin pasar por la validación de entrada.
func (f *fixture) seedRequest(t *testing.T, itemCode string, qty int, from, to string) *entity.StockRequest {
	t.Helper()
	now := time.Now()
	req := &entity.StockRequest{
		ID:           uuid.New().String(),
		CompanyID:    testCompanyID,
		ItemCode:     itemCode,
		Quantity:     qty,
		FromLocation: from,
		ToLocation:   to,
		Status:       entity.RequestStatusPending,
		RequestedBy:  requester,
		RequestedAt:  now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.StockRequests().Create(context.Background(), req))
	return req
}

func (f *fixture) stockAt(t *testing.T, itemCode, location string) *entity.StockItem {
	t.Helper()
	item, err := f.store.StockItems().FindActive(context.Background(), testCompanyID, itemCode, location)
	require.NoError(t, err)
	return item
}

func (f *fixture) request(t *testing.T, id string) *entity.StockRequest {
	t.Helper()
	req, err := f.store.StockRequests().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, req)
	return req
}

func (f *fixture) auditFor(t *testing.T, requestID string) []*entity.StockTransfer {
	t.Helper()
	list, err := f.store.StockTransfers().List(context.Background(), repository.TransferFilter{
		CompanyID: testCompanyID,
		RequestID: requestID,
	})
	require.NoError(t, err)
	return list
}
