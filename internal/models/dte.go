package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawDTE is a single document as delivered by an extraction source, keyed by
// the Spanish field names used in SII exports. Values arrive in whatever
// shape the source produced them (numbers, locale-formatted strings, dates).
type RawDTE map[string]interface{}

// DTE is the canonical form of an electronic tax document. Every field is
// always populated; the parser substitutes documented defaults instead of
// propagating missing values.
type DTE struct {
	Folio         int
	DocumentType  int
	IssueDate     time.Time
	IssuerRUT     string
	IssuerDV      string
	RecipientRUT  string
	RecipientDV   string
	IssuerName    string
	RecipientName string
	NetAmount     decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	Status        string
	TrackID       string

	// Raw keeps the record exactly as it came in, for audit and debugging.
	Raw RawDTE
}
