// Package redact scrubs credentials and personal data from error text before
// it is written to logs.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules run in order; connection strings go first so their embedded
// passwords are not partially rewritten by later rules.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres(?:ql)?|mysql|redis)://[^\s@/]+@`), "$1://[REDACTED_CREDENTIAL]@"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`\$2[abxy]\$\d{2}\$[./A-Za-z0-9]{53}`), "[REDACTED_HASH]"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api[_-]?key|token)(["'\s:=]+)[^\s"'&,]{3,}`), "$1$2[REDACTED]"},
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`), "[REDACTED_KEY]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error redacts err.Error(). A nil error yields an empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
