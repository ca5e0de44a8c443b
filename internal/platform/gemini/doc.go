// Package gemini generates memory insights with Google's Gemini API.
//
// InsightGenerator renders a prompt from the memory, asks the model for a
// JSON reply and converts it into domain.MemoryInsights. The genai client is
// reached through the small ContentGenerator interface so tests can supply a
// canned response.
package gemini
