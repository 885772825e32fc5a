package parser

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. The order is load-bearing: day-first
// layouts win over month-first for ambiguous strings like "01/02/2025".
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"02.01.2006",
	"2006/01/02",
}

// ParseDate normalizes an issue date to midnight UTC. Native times pass
// through truncated to their date. Missing or unparseable values fall back
// to the current date, which is lossy but keeps the batch moving.
func (p *Parser) ParseDate(value interface{}) time.Time {
	switch v := value.(type) {
	case time.Time:
		return truncateToDay(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "None" {
			return today()
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateToDay(t)
			}
		}
		p.log.Warn("unparseable issue date, defaulting to today", "value", s)
		return today()
	case nil:
		return today()
	}

	p.log.Warn("unexpected issue date type, defaulting to today", "value", value)
	return today()
}

func today() time.Time {
	return truncateToDay(time.Now().UTC())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
