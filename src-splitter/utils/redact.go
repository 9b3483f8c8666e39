package utils

import "regexp"

// Logs end up in public CI output; anything resembling a secret gets masked
// before it is written. Covers UUIDs, long hex runs (tokens, hashes), URL
// query strings and tokenized feed file names.
var (
	redactHex  = regexp.MustCompile(`\b[0-9a-fA-F]{16,}\b|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[089abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}\b`)
	redactQs   = regexp.MustCompile(`(\?.*)$`)
	redactFeed = regexp.MustCompile(`([A-Z0-9\-_.]+)--([0-9a-fA-F]{8,})\.ics\b`)
)

// Redact strips query strings, masks feed tokens and long hex/UUID runs.
func Redact(s string) string {
	s = redactQs.ReplaceAllString(s, "")
	s = redactFeed.ReplaceAllString(s, "$1--***.ics")
	s = redactHex.ReplaceAllString(s, "***")
	return s
}
