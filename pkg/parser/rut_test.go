package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fizko/dte/pkg/parser"
)

func TestParseRUT(t *testing.T) {
	p := parser.New()

	tests := []struct {
		name      string
		value     interface{}
		wantNum   string
		wantDigit string
	}{
		{"dotted with dash", "76.123.456-5", "76123456", "5"},
		{"plain", "761234565", "76123456", "5"},
		{"k check digit", "12.345.678-k", "12345678", "K"},
		{"short number zero padded", "1234-5", "00001234", "5"},
		{"too short", "5", "00000000", "0"},
		{"nil", nil, "00000000", "0"},
		{"none literal", "None", "00000000", "0"},
		{"empty", "", "00000000", "0"},
		{"non digit body", "ABC-5", "00000000", "0"},
		{"numeric type", 76123456, "00000000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, digit := p.ParseRUT(tt.value)
			assert.Equal(t, tt.wantNum, num)
			assert.Equal(t, tt.wantDigit, digit)
		})
	}
}
