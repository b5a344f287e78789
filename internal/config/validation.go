package config

import (
	"fmt"
	"strings"
)

// ValidationError names one invalid config key.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every problem found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("validation failed:")
	for _, ve := range e {
		b.WriteString("\n  - ")
		b.WriteString(ve.Error())
	}
	return b.String()
}

// require records msg under field when ok is false.
func (e *ValidationErrors) require(ok bool, field, msg string) {
	if !ok {
		*e = append(*e, ValidationError{Field: field, Message: msg})
	}
}

// oneOf reports whether s is one of the allowed values.
func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// reportFlags lists the characters accepted in report.format.
const reportFlags = "lLfFdDT"

// Validate returns ValidationErrors listing every invalid field, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors

	l := c.Loader
	errs.require(oneOf(l.Mode, "nodes", "edges", "all"), "loader.mode", "mode must be 'nodes', 'edges', or 'all'")
	errs.require(l.NumLoaders > 0, "loader.num_loaders", "num_loaders must be positive")
	errs.require(l.NumThreads > 0, "loader.num_threads", "num_threads must be positive")
	errs.require(l.LoaderIndex >= 0 && (l.NumLoaders <= 0 || l.LoaderIndex < l.NumLoaders),
		"loader.loader_index", fmt.Sprintf("loader_index must be in [0, %d)", l.NumLoaders))
	errs.require(l.BaseDir != "", "loader.base_dir", "base_dir is required")
	errs.require(l.SupplementaryDir != "", "loader.supplementary_dir", "supplementary_dir is required")

	errs.require(c.Report.IntervalSeconds > 0, "report.interval_seconds", "interval_seconds must be positive")
	for _, r := range c.Report.Format {
		if !strings.ContainsRune(reportFlags, r) {
			errs.require(false, "report.format",
				fmt.Sprintf("unknown flag %q, allowed flags are %s", r, reportFlags))
			break
		}
	}

	c.validateSink(&errs)

	errs.require(oneOf(c.Logging.Level, "", "debug", "info", "warn", "error"),
		"logging.level", "level must be 'debug', 'info', 'warn', or 'error'")
	errs.require(oneOf(c.Logging.Format, "", "json", "text"), "logging.format", "format must be 'json' or 'text'")

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateSink(errs *ValidationErrors) {
	switch c.Sink.Kind {
	case SinkImage:
		errs.require(c.Sink.OutputDir != "", "sink.output_dir", "output_dir is required for the image sink")
	case SinkMySQL:
		validateDatabase(errs, "sink.mysql", &c.Sink.MySQL)
	case SinkDiscard:
	default:
		errs.require(false, "sink.kind", "kind must be 'image', 'mysql', or 'discard'")
	}
	errs.require(c.Sink.GraphName != "", "sink.graph_name", "graph_name is required")
}

func validateDatabase(errs *ValidationErrors, prefix string, db *DatabaseConfig) {
	errs.require(db.Host != "", prefix+".host", "host is required")
	errs.require(db.Port > 0 && db.Port <= 65535, prefix+".port", "port must be between 1 and 65535")
	errs.require(db.User != "", prefix+".user", "user is required")
	errs.require(db.Database != "", prefix+".database", "database name is required")
	errs.require(oneOf(db.TLS, "", "disable", "preferred", "required"), prefix+".tls",
		"tls must be 'disable', 'preferred', or 'required'")
	errs.require(db.MaxConnections >= 0, prefix+".max_connections", "max_connections cannot be negative")
	errs.require(db.MaxIdleConnections >= 0, prefix+".max_idle_connections", "max_idle_connections cannot be negative")
}
