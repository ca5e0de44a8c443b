// Package auth handles account credentials and session tokens.
//
// Passwords are stored as bcrypt hashes. Sessions are HS256 JWTs carrying the
// user id, delivered to browsers in an HTTP-only cookie by the api package.
package auth
