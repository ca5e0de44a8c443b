// Package store declares the repository interfaces for users, memories and
// reminders, the errors they return and the transaction helpers services use
// to group several repository calls into one unit of work.
package store
