package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	"github.com/carson-networks/cashdesk-server/internal/service"
	storagetxn "github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	storagetransfer "github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// mockActionProcessor stands in for the operator. Tests use Run callbacks to
// fill the action's Result the way a committed unit of work would.
type mockActionProcessor struct {
	mock.Mock
}

func (m *mockActionProcessor) Process(ctx context.Context, action actions.IAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

// mockTransferService is a mock for the read-side service interfaces.
type mockTransferService struct {
	mock.Mock
}

func (m *mockTransferService) Get(ctx context.Context, tenantID, id uuid.UUID) (*service.TransferDetail, error) {
	args := m.Called(ctx, tenantID, id)
	detail, _ := args.Get(0).(*service.TransferDetail)
	return detail, args.Error(1)
}

func (m *mockTransferService) List(ctx context.Context, tenantID uuid.UUID, filter service.TransferFilter, cursor *service.Cursor) ([]*storagetransfer.CashTransitTransfer, *service.Cursor, error) {
	args := m.Called(ctx, tenantID, filter, cursor)
	rows, _ := args.Get(0).([]*storagetransfer.CashTransitTransfer)
	next, _ := args.Get(1).(*service.Cursor)
	return rows, next, args.Error(2)
}

type registrar interface {
	Register(api huma.API)
}

// newTestAPI builds a humatest API with the given handlers registered.
func newTestAPI(t *testing.T, handlers ...registrar) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	for _, h := range handlers {
		h.Register(api)
	}
	return api
}

func tenantHeader(tenantID uuid.UUID) string {
	return "X-Tenant-ID: " + tenantID.String()
}

func sampleTransfer(tenantID uuid.UUID) *storagetransfer.CashTransitTransfer {
	return &storagetransfer.CashTransitTransfer{
		ID:                    uuid.Must(uuid.NewV4()),
		TenantID:              tenantID,
		LegalEntityID:         uuid.Must(uuid.NewV4()),
		SourceRegisterID:      uuid.Must(uuid.NewV4()),
		TargetRegisterID:      uuid.Must(uuid.NewV4()),
		SourceOperatingUnitID: uuid.Must(uuid.NewV4()),
		TargetOperatingUnitID: uuid.Must(uuid.NewV4()),
		TransferOutTxnID:      uuid.Must(uuid.NewV4()),
		Status:                storagetransfer.StatusInitiated,
		Amount:                decimal.RequireFromString("250.00"),
		CurrencyCode:          "EUR",
		TransitAccountID:      uuid.Must(uuid.NewV4()),
		IdempotencyKey:        "tr-key-1",
		CreatedAt:             time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func sampleOutLeg(tr *storagetransfer.CashTransitTransfer) *storagetxn.CashTransaction {
	return &storagetxn.CashTransaction{
		ID:           tr.TransferOutTxnID,
		TenantID:     tr.TenantID,
		RegisterID:   tr.SourceRegisterID,
		TxnNo:        "CSH-2026-000003",
		TxnType:      storagetxn.TypeTransferOut,
		Status:       storagetxn.StatusDraft,
		Amount:       tr.Amount,
		CurrencyCode: tr.CurrencyCode,
		CreatedAt:    tr.CreatedAt,
	}
}
