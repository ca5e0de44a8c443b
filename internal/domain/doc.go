// Package domain holds the entities of the memory and reminder manager:
// users, memories, reminders, the subscription tier table and pagination
// arithmetic. It has no knowledge of storage or transport.
package domain
