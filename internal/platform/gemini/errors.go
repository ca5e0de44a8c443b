package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the generator cannot be configured.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyMemory is returned when a memory has neither title nor content.
	ErrEmptyMemory = errors.New("memory has no text to analyze")

	// ErrInvalidResponse is returned when the model reply cannot be used.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked is returned when safety filters stopped generation.
	ErrContentBlocked = errors.New("content blocked by gemini safety filters")
)
