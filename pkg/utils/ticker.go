// Package utils provides small shared helpers for ticker handling.
package utils

import (
	"strings"
	"unicode"
)

// maxTickerLen bounds what the heuristic will still treat as a symbol.
const maxTickerLen = 6

// NormalizeTicker uppercases and trims a user-supplied symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LooksLikeTicker reports whether a free-text query is plausibly a stock
// symbol rather than a company name: short, and composed only of letters,
// dots, and hyphens (e.g. "AAPL", "BRK.B", "RDS-A"). The classification
// only routes the lookup; the EDGAR directory has the final say.
func LooksLikeTicker(query string) bool {
	q := strings.TrimSpace(query)
	if q == "" || len([]rune(q)) > maxTickerLen {
		return false
	}
	for _, r := range q {
		if unicode.IsLetter(r) && r <= unicode.MaxASCII {
			continue
		}
		if r == '.' || r == '-' {
			continue
		}
		return false
	}
	return true
}
