// Package service implements the memory, reminder, subscription, dashboard,
// profile and insight operations on top of the store interfaces.
//
// Every operation is scoped to the calling user. Multi-step mutations run in
// a single transaction through store.Transactor, and each service reads the
// time from an injected clock so that overdue and upcoming windows are
// deterministic in tests.
package service
