package parser_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fizko/dte/pkg/parser"
)

func TestParseAmount(t *testing.T) {
	p := parser.New()

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"chilean thousands and decimal comma", "1.234.567,89", "1234567.89"},
		{"decimal comma only", "1234,89", "1234.89"},
		{"standard decimal point", "1234.89", "1234.89"},
		{"plain integer string", "1190", "1190"},
		{"currency noise", "$ 1.234.567,89 CLP", "1234567.89"},
		{"negative", "-150,5", "-150.5"},
		{"int", 1190, "1190"},
		{"int64", int64(1190), "1190"},
		{"float", 1234.89, "1234.89"},
		{"nil", nil, "0"},
		{"empty string", "", "0"},
		{"none literal", "None", "0"},
		{"garbage", "n/a", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := decimal.RequireFromString(tt.want)
			got := p.ParseAmount(tt.value)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestParseAmountDecimalPassthrough(t *testing.T) {
	p := parser.New()

	d := decimal.RequireFromString("1234567.89")
	assert.True(t, d.Equal(p.ParseAmount(d)))
}

func TestParseAmountFloatExact(t *testing.T) {
	p := parser.New()

	// 0.1+0.2 style artifacts must not leak through the conversion.
	got := p.ParseAmount(0.1)
	assert.Equal(t, "0.1", got.String())
}
