package domain

import "strings"

// MaxSuggestedTags caps the number of tags returned with insights.
const MaxSuggestedTags = 5

// MemoryInsights is an AI-generated summary of a memory.
type MemoryInsights struct {
	Summary       string   `json:"summary"`
	SuggestedTags []string `json:"suggested_tags"`
}

// NormalizeTags trims and lowercases tags, drops empty and repeated ones and
// keeps at most limit of them in their original order.
func NormalizeTags(tags []string, limit int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == limit {
			break
		}
	}
	return out
}
