package config

import (
	"fmt"

	"git.home.luguber.info/inful/eventmetrics/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// PolicySet names the group of event types with specialized series.
type PolicySet string

const (
	PolicySetMinimal PolicySet = "minimal"
	PolicySetFull    PolicySet = "full"
)

var policySetNormalizer = normalization.NewNormalizer("policy set", map[string]PolicySet{
	"minimal": PolicySetMinimal,
	"full":    PolicySetFull,
}, PolicySetFull)

// DirectoryType selects the lookup backend.
type DirectoryType string

const (
	DirectoryNone   DirectoryType = "none"
	DirectoryStatic DirectoryType = "static"
	DirectorySQL    DirectoryType = "sql"
)

var directoryTypeNormalizer = normalization.NewNormalizer("directory type", map[string]DirectoryType{
	"none":   DirectoryNone,
	"static": DirectoryStatic,
	"file":   DirectoryStatic,
	"sql":    DirectorySQL,
	"db":     DirectorySQL,
}, DirectoryNone)

// RetryBackoffMode enumerates backoff strategies.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer("retry backoff mode", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"constant":    RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, RetryBackoffExponential)

// Normalize case-folds enumerations in place. Unknown values are errors.
func Normalize(cfg *Config) error {
	var err error
	if cfg.Logging.Level, err = logLevelNormalizer.NormalizeStrict(string(cfg.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Logging.Format, err = logFormatNormalizer.NormalizeStrict(string(cfg.Logging.Format)); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	if cfg.Metrics.Specialized, err = policySetNormalizer.NormalizeStrict(string(cfg.Metrics.Specialized)); err != nil {
		return fmt.Errorf("metrics.specialized: %w", err)
	}
	if cfg.Directory.Type, err = directoryTypeNormalizer.NormalizeStrict(string(cfg.Directory.Type)); err != nil {
		return fmt.Errorf("directory.type: %w", err)
	}
	if cfg.Retry.Mode, err = retryBackoffNormalizer.NormalizeStrict(string(cfg.Retry.Mode)); err != nil {
		return fmt.Errorf("retry.mode: %w", err)
	}
	return nil
}
