// Package api handles incoming HTTP requests for the memory and reminder
// service: routing, request decoding, session cookies and response
// formatting. It acts as an adapter between external clients and the
// internal application services, translating HTTP concerns to business
// operations and mapping domain errors to status codes.
package api
