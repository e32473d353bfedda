// Package logs builds the process-wide structured logger.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"greenroute/config"
	"greenroute/internal/errors"

	"go.uber.org/fx"
)

// Params defines the parameters required for the logger
type Params struct {
	fx.In

	Config *config.Config
}

// New creates the slog.Logger used by every component and installs it as the
// default logger. Output is text when env.log.pretty is set, JSON otherwise.
func New(params Params) (*slog.Logger, error) {
	logger, err := newLogger(os.Stdout, params.Config.Env)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	return logger, nil
}

func newLogger(w io.Writer, env config.EnvConfig) (*slog.Logger, error) {
	level, err := parseLogLevel(env.Log.Level)
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{
		Level:     level,
		AddSource: env.Debug,
	}

	var handler slog.Handler
	if env.Log.Pretty {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}

	logger := slog.New(handler)
	if env.ServiceName != "" {
		logger = logger.With(slog.String("service", env.ServiceName))
	}
	if env.Env != "" {
		logger = logger.With(slog.String("env", env.Env))
	}

	return logger, nil
}

// parseLogLevel converts string log level to slog.Level; empty means info
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
	}
}
