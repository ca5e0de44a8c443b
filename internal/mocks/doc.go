// Package mocks provides centralized test doubles for the store, auth and
// insight interfaces.
//
// The Mock*Store types are in-memory fakes: by default they behave like a
// small database, and every method can be overridden through its Fn field.
// TestifyMockUserStore is the testify/mock variant for tests that assert on
// exact calls.
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	memories := mocks.NewMockMemoryStore()
//	memories.CountByUserFn = func(ctx context.Context, userID uuid.UUID) (int, error) {
//	    return 100, nil
//	}
package mocks
