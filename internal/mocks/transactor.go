package mocks

import (
	"context"

	"github.com/phrazzld/recall-api/internal/store"
)

// MockTransactor runs the function directly with a nil transaction. Store
// mocks ignore the transaction, so writes made before a failure stay
// visible; tests that care about rollback assert on the returned error.
type MockTransactor struct {
	// Err, when set, is returned without calling the function.
	Err error

	// Calls counts WithinTx invocations.
	Calls int
}

var _ store.Transactor = (*MockTransactor)(nil)

// WithinTx implements store.Transactor.
func (m *MockTransactor) WithinTx(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
