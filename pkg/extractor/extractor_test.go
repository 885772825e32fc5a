package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fizko/dte/internal/models"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const listingPage = `
	<html>
		<head><title>Documentos Recibidos</title></head>
		<body>
			<table>
				<tr>
					<th>Tipo Documento</th><th>Folio</th><th>Fecha Emision</th>
					<th>RUT Emisor</th><th>Monto Total</th><th>Estado</th>
				</tr>
				<tr>
					<td>FACTURA ELECTRONICA</td><td>1001</td><td>15/03/2025</td>
					<td>76.123.456-5</td><td>1.190.000,00</td><td>REGISTRO</td>
				</tr>
				<tr>
					<td>NOTA DE CREDITO ELECTRONICA</td><td>55</td><td>16/03/2025</td>
					<td>77.888.999-K</td><td>50.000,00</td><td>REGISTRO</td>
				</tr>
			</table>
			<a rel="next" href="/page2.html">Siguiente</a>
		</body>
	</html>`

const lastPage = `
	<html>
		<body>
			<table>
				<tr><th>Tipo Documento</th><th>Folio</th><th>Fecha Emision</th>
					<th>RUT Emisor</th><th>Monto Total</th><th>Estado</th></tr>
				<tr><td>BOLETA ELECTRONICA</td><td>2002</td><td>17/03/2025</td>
					<td>76.123.456-5</td><td>9.990</td><td>REGISTRO</td></tr>
			</table>
		</body>
	</html>`

func TestExtractorConfig(t *testing.T) {
	config := ExtractorConfig{
		BaseURL:   "https://example.com",
		MaxPages:  5,
		RateLimit: 1.0,
		Timeout:   10 * time.Second,
	}

	e, err := NewWithConfig(config)
	require.NoError(t, err)
	assert.Equal(t, config.BaseURL, e.config.BaseURL)
	assert.Equal(t, config.MaxPages, e.config.MaxPages)
	assert.Equal(t, "table", e.config.TableSelector)
}

func TestExtractWithMockServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(listingPage))
	})
	mux.HandleFunc("/page2.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(lastPage))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var pages []string
	e, err := NewWithConfig(ExtractorConfig{
		BaseURL:   server.URL,
		RateLimit: 100,
		OnProgress: func(page string) {
			pages = append(pages, page)
		},
	})
	require.NoError(t, err)

	records, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, pages, 2)

	assert.Equal(t, "FACTURA ELECTRONICA", records[0]["tipo_documento"])
	assert.Equal(t, "1001", records[0]["folio"])
	assert.Equal(t, "15/03/2025", records[0]["fecha_emision"])
	assert.Equal(t, "76.123.456-5", records[0]["rut_emisor"])
	assert.Equal(t, "1.190.000,00", records[0]["monto_total"])
	assert.Equal(t, "REGISTRO", records[0]["estado"])

	// Third record comes from the second page.
	assert.Equal(t, "2002", records[2]["folio"])
}

func TestExtractStopsAtMaxPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		// Every page links to a fresh next page.
		w.Write([]byte(`<html><body>
			<table><tr><th>Folio</th></tr><tr><td>1</td></tr></table>
			<a rel="next" href="/p` + r.URL.Path + `x.html">next</a>
		</body></html>`))
	}))
	defer server.Close()

	e, err := NewWithConfig(ExtractorConfig{
		BaseURL:   server.URL,
		MaxPages:  3,
		RateLimit: 100,
	})
	require.NoError(t, err)

	records, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestNextPageStaysOnHost(t *testing.T) {
	e, err := NewWithConfig(ExtractorConfig{BaseURL: "https://example.com"})
	require.NoError(t, err)

	doc := mustParse(t, `<html><body><a rel="next" href="https://elsewhere.com/p2">next</a></body></html>`)
	assert.Equal(t, "", e.nextPage(doc, "https://example.com/p1"))
}

func TestLoadBatch(t *testing.T) {
	records := []models.RawDTE{
		{"folio": "10", "tipo_documento": "FACTURA ELECTRONICA"},
		{"folio": "11", "tipo_documento": "BOLETA ELECTRONICA"},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := LoadBatch(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "10", loaded[0]["folio"])
}

func TestLoadBatchMissingFile(t *testing.T) {
	_, err := LoadBatch(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
