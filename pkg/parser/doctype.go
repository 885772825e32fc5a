package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// SII document type codes.
const (
	TypeFacturaElectronica       = 33
	TypeFacturaExentaElectronica = 34
	TypeBoletaElectronica        = 39
	TypeBoletaExentaElectronica  = 41
	TypeFacturaCompraElectronica = 46
	TypeGuiaDespachoElectronica  = 52
	TypeNotaDebitoElectronica    = 56
	TypeNotaCreditoElectronica   = 61
	TypeFacturaExportacion       = 110
	TypeNotaDebitoExportacion    = 111
	TypeNotaCreditoExportacion   = 112
)

// documentTypeCodes maps the canonical SII document names, as they appear in
// portal exports, to their numeric codes.
var documentTypeCodes = map[string]int{
	"FACTURA ELECTRONICA":                        TypeFacturaElectronica,
	"FACTURA NO AFECTA O EXENTA ELECTRONICA":     TypeFacturaExentaElectronica,
	"BOLETA ELECTRONICA":                         TypeBoletaElectronica,
	"BOLETA EXENTA ELECTRONICA":                  TypeBoletaExentaElectronica,
	"FACTURA DE COMPRA ELECTRONICA":              TypeFacturaCompraElectronica,
	"GUIA DE DESPACHO ELECTRONICA":               TypeGuiaDespachoElectronica,
	"NOTA DE DEBITO ELECTRONICA":                 TypeNotaDebitoElectronica,
	"NOTA DE CREDITO ELECTRONICA":                TypeNotaCreditoElectronica,
	"FACTURA DE EXPORTACION ELECTRONICA":         TypeFacturaExportacion,
	"NOTA DE DEBITO DE EXPORTACION ELECTRONICA":  TypeNotaDebitoExportacion,
	"NOTA DE CREDITO DE EXPORTACION ELECTRONICA": TypeNotaCreditoExportacion,
}

var digitRun = regexp.MustCompile(`\d+`)

// ResolveDocumentType maps a document type descriptor to its SII code.
// Numeric input is trusted as-is. Strings are matched against the canonical
// name table, then mined for an embedded code ("Tipo 33 - Factura").
// Anything else defaults to electronic invoice (33) so that one odd
// descriptor never takes down a batch.
func (p *Parser) ResolveDocumentType(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		name := strings.ToUpper(strings.TrimSpace(v))
		if code, ok := documentTypeCodes[name]; ok {
			return code
		}
		if m := digitRun.FindString(name); m != "" {
			if code, err := strconv.Atoi(m); err == nil {
				return code
			}
		}
	}

	p.log.Warn("unrecognized document type, defaulting to electronic invoice", "value", value)
	return TypeFacturaElectronica
}
