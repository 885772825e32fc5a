// Package extractor pulls raw DTE records out of SII-facing document
// listings: paginated HTML tables on the portal side, or JSON batches
// dumped by upstream jobs.
package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/fizko/dte/internal/models"
)

type ExtractorConfig struct {
	BaseURL       string
	MaxPages      int
	RateLimit     float64 // requests per second
	TableSelector string
	Timeout       time.Duration
	OnProgress    func(page string)
}

type Extractor struct {
	config   ExtractorConfig
	client   *http.Client
	visited  map[string]bool
	limiter  *rate.Limiter
	baseHost string
}

// headerFields maps the column headers seen on portal listings to the raw
// record keys the parser understands.
var headerFields = map[string]string{
	"TIPO DOCUMENTO":        "tipo_documento",
	"TIPO DOC":              "tipo_documento",
	"FOLIO":                 "folio",
	"FECHA EMISION":         "fecha_emision",
	"FECHA EMISIÓN":         "fecha_emision",
	"RUT EMISOR":            "rut_emisor",
	"RUT RECEPTOR":          "rut_receptor",
	"RAZON SOCIAL EMISOR":   "razon_social_emisor",
	"RAZÓN SOCIAL EMISOR":   "razon_social_emisor",
	"RAZON SOCIAL RECEPTOR": "razon_social_receptor",
	"RAZÓN SOCIAL RECEPTOR": "razon_social_receptor",
	"MONTO NETO":            "monto_neto",
	"MONTO IVA":             "monto_iva",
	"MONTO TOTAL":           "monto_total",
	"ESTADO":                "estado",
	"TRACK ID":              "sii_track_id",
}

func NewWithConfig(config ExtractorConfig) (*Extractor, error) {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxPages == 0 {
		config.MaxPages = 10
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.TableSelector == "" {
		config.TableSelector = "table"
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		visited:  make(map[string]bool),
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		baseHost: parsedURL.Host,
	}, nil
}

func New(baseURL string) *Extractor {
	e, _ := NewWithConfig(ExtractorConfig{
		BaseURL: baseURL,
	})
	return e
}

// Extract walks the listing starting at source, following "next" pagination
// links on the same host up to MaxPages, and returns every row found.
func (e *Extractor) Extract(ctx context.Context, source string) ([]models.RawDTE, error) {
	var records []models.RawDTE

	pageURL := source
	for page := 0; page < e.config.MaxPages && pageURL != ""; page++ {
		if e.visited[pageURL] {
			break
		}
		e.visited[pageURL] = true

		if e.config.OnProgress != nil {
			e.config.OnProgress(pageURL)
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return records, err
		}

		doc, err := e.fetch(ctx, pageURL)
		if err != nil {
			return records, err
		}

		records = append(records, e.extractRows(doc)...)
		pageURL = e.nextPage(doc, pageURL)
	}

	return records, nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, pageURL)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// extractRows reads the first matching table: the header row names the
// columns, every following row becomes one raw record. Columns without a
// known header are kept under their normalized header text so nothing is
// silently dropped.
func (e *Extractor) extractRows(doc *goquery.Document) []models.RawDTE {
	table := doc.Find(e.config.TableSelector).First()
	if table.Length() == 0 {
		return nil
	}

	var columns []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		header := normalizeHeader(th.Text())
		if field, ok := headerFields[header]; ok {
			columns = append(columns, field)
			return
		}
		columns = append(columns, strings.ToLower(strings.ReplaceAll(header, " ", "_")))
	})
	if len(columns) == 0 {
		return nil
	}

	var records []models.RawDTE
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return // header or separator row
		}

		record := make(models.RawDTE, len(columns))
		cells.Each(func(i int, td *goquery.Selection) {
			if i >= len(columns) {
				return
			}
			record[columns[i]] = strings.TrimSpace(td.Text())
		})
		records = append(records, record)
	})

	return records
}

func (e *Extractor) nextPage(doc *goquery.Document, current string) string {
	href, exists := doc.Find(`a[rel="next"]`).First().Attr("href")
	if !exists {
		return ""
	}

	nextURL, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if !nextURL.IsAbs() {
		base, err := url.Parse(current)
		if err != nil {
			return ""
		}
		nextURL = base.ResolveReference(nextURL)
	}

	// Never follow pagination off the listing's host.
	if nextURL.Host != e.baseHost {
		return ""
	}

	return nextURL.String()
}

func normalizeHeader(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
