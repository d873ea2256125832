package cashtxn

import (
	"context"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	"github.com/carson-networks/cashdesk-server/internal/service"
	storagetxn "github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
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

// mockCashTransactionService is a mock for the read-side service interfaces.
type mockCashTransactionService struct {
	mock.Mock
}

func (m *mockCashTransactionService) Get(ctx context.Context, tenantID, id uuid.UUID) (*storagetxn.CashTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	txn, _ := args.Get(0).(*storagetxn.CashTransaction)
	return txn, args.Error(1)
}

func (m *mockCashTransactionService) List(ctx context.Context, tenantID uuid.UUID, filter service.CashTransactionFilter, cursor *service.Cursor) ([]*storagetxn.CashTransaction, *service.Cursor, error) {
	args := m.Called(ctx, tenantID, filter, cursor)
	rows, _ := args.Get(0).([]*storagetxn.CashTransaction)
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
