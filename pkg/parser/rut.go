package parser

import "strings"

// Sentinel identifier returned for values that cannot be split into a
// (number, check digit) pair.
const (
	SentinelRUTNumber = "00000000"
	SentinelRUTDigit  = "0"
)

// ParseRUT splits a Chilean taxpayer identifier into its zero-padded number
// and check digit. The split is purely structural; no mod-11 arithmetic is
// applied to the check digit.
func (p *Parser) ParseRUT(value interface{}) (string, string) {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return SentinelRUTNumber, SentinelRUTDigit
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ToUpper(s)

	if len(s) < 2 {
		return SentinelRUTNumber, SentinelRUTDigit
	}

	number, checkDigit := s[:len(s)-1], s[len(s)-1:]
	for _, r := range number {
		if r < '0' || r > '9' {
			return SentinelRUTNumber, SentinelRUTDigit
		}
	}

	if len(number) < 8 {
		number = strings.Repeat("0", 8-len(number)) + number
	}

	return number, checkDigit
}
