package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// amountNoise strips everything but digits, separators and sign.
var amountNoise = regexp.MustCompile(`[^0-9.,\-]`)

// ParseAmount normalizes a monetary amount to an exact decimal. Missing
// values map to zero. Numeric input is converted through its string
// representation to avoid binary-float artifacts.
//
// Separator disambiguation: a string carrying both "." and "," is read in
// the Chilean convention ("1.234.567,89" is 1234567.89); a lone "," is a
// decimal comma ("1234,89"); otherwise the string is standard decimal
// notation.
func (p *Parser) ParseAmount(value interface{}) decimal.Decimal {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', -1, 64))
		if err == nil {
			return d
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "None" {
			return decimal.Zero
		}

		s = amountNoise.ReplaceAllString(s, "")

		switch {
		case strings.Contains(s, ".") && strings.Contains(s, ","):
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		case strings.Contains(s, ","):
			s = strings.ReplaceAll(s, ",", ".")
		}

		d, err := decimal.NewFromString(s)
		if err != nil {
			p.log.Warn("unparseable amount, defaulting to zero", "value", v)
			return decimal.Zero
		}
		return d
	case nil:
		return decimal.Zero
	}

	p.log.Warn("unexpected amount type, defaulting to zero", "value", value)
	return decimal.Zero
}
