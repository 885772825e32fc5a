// Package parser normalizes raw DTE records pulled from SII-facing sources
// into canonical documents. Field-level malformations never fail a record:
// each normalizer substitutes a documented default and logs a warning.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fizko/dte/internal/models"
	"github.com/fizko/dte/pkg/logger"
)

const (
	// RecipientPlaceholder replaces an empty recipient name. The issuer name
	// has no placeholder; absence becomes an empty string.
	RecipientPlaceholder = "Not specified"

	// DefaultStatus is assumed for records that arrive without one.
	DefaultStatus = "accepted"
)

// ParseError is an unrecoverable record-level fault: something the
// per-field fallbacks could not absorb.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

type ParserConfig struct {
	// MaxNameLength bounds free-text name fields to fit downstream storage.
	MaxNameLength int
	Logger        *logger.Logger

	// OnRecord, if set, is called with each record's input index after
	// ParseBatch has handled it, success or not.
	OnRecord func(index int)
}

type Parser struct {
	config ParserConfig
	log    *logger.Logger
}

func NewWithConfig(config ParserConfig) *Parser {
	if config.MaxNameLength == 0 {
		config.MaxNameLength = 255
	}
	if config.Logger == nil {
		config.Logger = logger.New("warn")
	}

	return &Parser{
		config: config,
		log:    config.Logger,
	}
}

func New() *Parser {
	return NewWithConfig(ParserConfig{})
}

// Parse normalizes one raw record. Malformed fields are absorbed by the
// per-field defaults; only a nil record or an internal fault produces a
// *ParseError.
func (p *Parser) Parse(raw models.RawDTE) (dte *models.DTE, err error) {
	if raw == nil {
		return nil, &ParseError{Message: "nil record"}
	}

	defer func() {
		if r := recover(); r != nil {
			dte = nil
			err = &ParseError{Message: fmt.Sprintf("%v", r)}
		}
	}()

	net := p.ParseAmount(raw["monto_neto"])
	tax := p.ParseAmount(raw["monto_iva"])
	total := p.ParseAmount(raw["monto_total"])

	// Upstream sources routinely omit the total when net and tax are present.
	if total.IsZero() && (!net.IsZero() || !tax.IsZero()) {
		total = net.Add(tax)
	}

	issuerRUT, issuerDV := p.ParseRUT(raw["rut_emisor"])
	recipientRUT, recipientDV := p.ParseRUT(raw["rut_receptor"])

	dte = &models.DTE{
		Folio:         p.parseFolio(raw["folio"]),
		DocumentType:  p.ResolveDocumentType(raw["tipo_documento"]),
		IssueDate:     p.ParseDate(raw["fecha_emision"]),
		IssuerRUT:     issuerRUT,
		IssuerDV:      issuerDV,
		RecipientRUT:  recipientRUT,
		RecipientDV:   recipientDV,
		IssuerName:    p.normalizeName(raw["razon_social_emisor"], ""),
		RecipientName: p.normalizeName(raw["razon_social_receptor"], RecipientPlaceholder),
		NetAmount:     net,
		TaxAmount:     tax,
		TotalAmount:   total,
		Status:        stringField(raw["estado"], DefaultStatus),
		TrackID:       stringField(raw["sii_track_id"], ""),
		Raw:           raw,
	}

	return dte, nil
}

// ParseBatch normalizes a batch, skipping failed records. The returned
// documents keep the input order; each error string carries the zero-based
// position of the record that produced it.
func (p *Parser) ParseBatch(raws []models.RawDTE) ([]*models.DTE, []string) {
	parsed := make([]*models.DTE, 0, len(raws))
	var errs []string

	for i, raw := range raws {
		dte, err := p.Parse(raw)
		if err != nil {
			p.log.Error("failed to parse record", "index", i, "error", err)
			errs = append(errs, fmt.Sprintf("DTE #%d: %v", i, err))
		} else {
			parsed = append(parsed, dte)
		}
		if p.config.OnRecord != nil {
			p.config.OnRecord(i)
		}
	}

	return parsed, errs
}

// parseFolio accepts any numeric-ish representation and defaults to 0.
func (p *Parser) parseFolio(value interface{}) int {
	switch v := value.(type) {
	case int:
		if v >= 0 {
			return v
		}
	case int64:
		if v >= 0 {
			return int(v)
		}
	case float64:
		if v >= 0 {
			return int(v)
		}
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			if n >= 0 {
				return n
			}
			return 0 // negative folio, not a digit-mining candidate
		}
		if m := digitRun.FindString(s); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
	}
	return 0
}

func (p *Parser) normalizeName(value interface{}, placeholder string) string {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return placeholder
	}
	// Truncate on rune boundaries; byte slicing would split multibyte
	// characters in Spanish business names.
	if utf8.RuneCountInString(s) > p.config.MaxNameLength {
		return string([]rune(s)[:p.config.MaxNameLength])
	}
	return s
}

func stringField(value interface{}, fallback string) string {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
