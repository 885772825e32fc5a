package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Database config
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Validate Extractor config
	if c.Extractor.BaseURL != "" {
		if _, err := url.Parse(c.Extractor.BaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "extractor.base_url",
				Message: "invalid base URL",
			})
		}
	}

	if c.Extractor.MaxPages < 1 {
		errors = append(errors, ValidationError{
			Field:   "extractor.max_pages",
			Message: "max_pages must be positive",
		})
	}

	if c.Extractor.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "extractor.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Extractor.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "extractor.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	// Validate Parser config
	if c.Parser.MaxNameLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "parser.max_name_length",
			Message: "max_name_length must be positive",
		})
	}

	// Validate Logging config
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level: %s", c.Logging.Level),
		})
	}

	return errors
}
