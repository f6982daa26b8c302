package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/TWRT/task-analyzer/internal/logging"
	"github.com/TWRT/task-analyzer/internal/ranking"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{Field: "server.addr", Value: c.Server.Addr, Message: "must not be empty"})
	}
	if c.Server.DBPath == "" {
		errors = append(errors, ValidationError{Field: "server.db_path", Value: c.Server.DBPath, Message: "must not be empty"})
	}

	if u, err := url.Parse(c.Client.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "client.base_url",
			Value:   c.Client.BaseURL,
			Message: "must be an absolute http(s) URL",
		})
	}
	if c.Client.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "client.timeout_seconds",
			Value:   c.Client.TimeoutSeconds,
			Message: "must be positive",
		})
	}
	if _, ok := ranking.ParseStrategy(c.Client.DefaultStrategy); !ok {
		errors = append(errors, ValidationError{
			Field:   "client.default_strategy",
			Value:   c.Client.DefaultStrategy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ranking.StrategyNames(), ", ")),
		})
	}

	if !logging.IsValidLevel(c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.ToLower(strings.Join(logging.ValidLevels(), ", "))),
		})
	}

	return errors
}
