// Package events carries domain events between the services and anything
// that wants to observe user activity.
//
// Services publish a DomainEvent through an EventEmitter after a mutation
// succeeds. InMemoryEventEmitter dispatches synchronously to every registered
// EventHandler; ActivityLogHandler is the handler registered by the server.
package events
