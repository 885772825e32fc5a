package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/fizko/dte/internal/models"
	"github.com/fizko/dte/internal/types"
	cfgPkg "github.com/fizko/dte/pkg/config"
	"github.com/fizko/dte/pkg/extractor"
	"github.com/fizko/dte/pkg/logger"
	"github.com/fizko/dte/pkg/parser"
	"github.com/fizko/dte/pkg/store"
)

type Config struct {
	DBUrl      string
	SourceURL  string
	BatchFile  string
	TableName  string
	BatchSize  int
	MaxPages   int
	RateLimit  float64
	MaxNameLen int
	LogLevel   string
}

func main() {
	config := parseFlags()

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Config {
	var config Config
	var configPath string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&config.DBUrl, "db-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.StringVar(&config.SourceURL, "source-url", "", "Document listing URL to extract")
	flag.StringVar(&config.BatchFile, "batch-file", "", "JSON batch file of raw records")
	flag.StringVar(&config.TableName, "table", "dtes", "PostgreSQL table name")
	flag.IntVar(&config.BatchSize, "batch-size", 100, "Batch size for database operations")
	flag.IntVar(&config.MaxPages, "max-pages", 10, "Maximum listing pages to follow")
	flag.Float64Var(&config.RateLimit, "rate-limit", 2.0, "Rate limit for extraction")
	flag.IntVar(&config.MaxNameLen, "max-name-length", 255, "Truncation limit for name fields")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level")
	flag.Parse()

	// Load config file if specified
	if cfg, err := cfgPkg.LoadConfig(configPath); err == nil {
		if config.DBUrl == "" {
			config.DBUrl = cfg.Database.URL
		}
		if config.SourceURL == "" {
			config.SourceURL = cfg.Extractor.BaseURL
		}
		config.TableName = cfg.Database.TableName
		config.BatchSize = cfg.Database.BatchSize
		config.MaxPages = cfg.Extractor.MaxPages
		config.RateLimit = cfg.Extractor.RateLimit
		config.MaxNameLen = cfg.Parser.MaxNameLength
		config.LogLevel = cfg.Logging.Level
	}

	return config
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config Config) error {
	ctx := context.Background()
	lg := logger.New(config.LogLevel)

	// Collect raw records from whichever source was given
	var raws []models.RawDTE

	switch {
	case config.BatchFile != "":
		color.Blue("\nLoading batch file %s\n", config.BatchFile)

		loaded, err := extractor.LoadBatch(config.BatchFile)
		if err != nil {
			return fmt.Errorf("failed to load batch file: %v", err)
		}
		raws = loaded

	case config.SourceURL != "":
		color.Blue("\nExtracting documents from %s\n", config.SourceURL)

		var pageCount int32
		ext, err := extractor.NewWithConfig(extractor.ExtractorConfig{
			BaseURL:   config.SourceURL,
			MaxPages:  config.MaxPages,
			RateLimit: config.RateLimit,
			OnProgress: func(page string) {
				atomic.AddInt32(&pageCount, 1)
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize extractor: %v", err)
		}

		extractionBar := getProgressBar(-1, "Extracting document listing...")
		startTime := time.Now()

		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				default:
				}
				count := atomic.LoadInt32(&pageCount)
				extractionBar.Set(int(count))

				elapsed := time.Since(startTime).Seconds()
				if elapsed > 0 && count > 0 {
					rate := float64(count) / elapsed
					extractionBar.Describe(color.BlueString(
						"Extracting document listing... (%.1f pages/sec)", rate))
				}
				time.Sleep(100 * time.Millisecond)
			}
		}()

		var src types.Extractor = ext
		extracted, err := src.Extract(ctx, config.SourceURL)
		close(done)
		extractionBar.Finish()
		if err != nil {
			return fmt.Errorf("failed to extract documents: %v", err)
		}
		raws = extracted

	default:
		return fmt.Errorf("either -source-url or -batch-file is required")
	}

	color.Green("\n✓ Collected %d raw records\n", len(raws))
	if len(raws) == 0 {
		return nil
	}

	// Normalize
	parsingBar := getProgressBar(len(raws), "Normalizing documents...")
	p := parser.NewWithConfig(parser.ParserConfig{
		MaxNameLength: config.MaxNameLen,
		Logger:        lg,
		OnRecord: func(int) {
			parsingBar.Add(1)
		},
	})

	parsed, parseErrors := p.ParseBatch(raws)
	parsingBar.Finish()

	color.Green("\n✓ Normalized %d documents\n", len(parsed))
	if len(parseErrors) > 0 {
		color.Yellow("⚠ %d records failed:\n", len(parseErrors))
		for _, msg := range parseErrors {
			color.Red("  %s\n", msg)
		}
	}

	// Persist, unless running without a database
	if config.DBUrl == "" {
		color.Yellow("\nNo database configured, skipping storage\n")
		return nil
	}

	s, err := store.NewWithConfig(store.StoreConfig{
		ConnString: config.DBUrl,
		TableName:  config.TableName,
		BatchSize:  config.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize store: %v", err)
	}
	var docStore types.Store = s
	defer docStore.Close()

	storageBar := getProgressBar(len(parsed), "Storing documents...")
	for i := 0; i < len(parsed); i += config.BatchSize {
		end := i + config.BatchSize
		if end > len(parsed) {
			end = len(parsed)
		}
		batch := parsed[i:end]

		if err := docStore.Store(ctx, batch); err != nil {
			return fmt.Errorf("failed to store batch: %v", err)
		}
		storageBar.Add(len(batch))
	}
	storageBar.Finish()

	color.Green("\n✓ Stored %d documents\n", len(parsed))
	return nil
}
