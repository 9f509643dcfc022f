// Package logger wires the process-global zerolog logger for gometacall.
//
// The runtime hosts multiple concurrent language engines; component-scoped
// child loggers let log lines be filtered per subsystem without threading
// a *zerolog.Logger through every call. Rather than one hand-written
// accessor per component (every one of them identical but for a string
// literal), components are named constants and ComponentLogger derives the
// child logger once, memoized, the first time each is asked for.
package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component names the closed set of subsystems that log under their own
// "component" field, mirroring the closed error-Kind enum in internal/apperr
// rather than a free-form string per call site.
type Component string

const (
	ComponentLoader Component = "loader"
	ComponentCall   Component = "call"
	ComponentFork   Component = "fork"
	ComponentPlugin Component = "plugin"
	ComponentValue  Component = "value"
	ComponentHTTP   Component = "http"
)

// Log is the global logger instance, configured once by Initialize.
var Log zerolog.Logger

var (
	componentMu  sync.Mutex
	componentLog = map[Component]*zerolog.Logger{}
)

// Initialize sets up the global logger with the given level and format.
func Initialize(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	Log = log.With().
		Str("service", "gometacall").
		Logger()

	componentMu.Lock()
	componentLog = map[Component]*zerolog.Logger{}
	componentMu.Unlock()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("logger initialized")
}

// GetLogger returns the global logger instance.
func GetLogger() *zerolog.Logger {
	return &Log
}

// ComponentLogger returns the child logger scoped to c, deriving and
// caching it on first use. Every component's logger shares the same
// "component" field key; only the value differs, so there is exactly one
// construction path instead of one function per subsystem.
func ComponentLogger(c Component) *zerolog.Logger {
	componentMu.Lock()
	defer componentMu.Unlock()
	if l, ok := componentLog[c]; ok {
		return l
	}
	l := Log.With().Str("component", string(c)).Logger()
	componentLog[c] = &l
	return &l
}

// Loader creates a logger scoped to the loader manager / load pipeline.
func Loader() *zerolog.Logger { return ComponentLogger(ComponentLoader) }

// Call creates a logger scoped to the call pipeline (metacall* variants).
func Call() *zerolog.Logger { return ComponentLogger(ComponentCall) }

// Fork creates a logger scoped to fork-safety pre/post callbacks.
func Fork() *zerolog.Logger { return ComponentLogger(ComponentFork) }

// Plugin creates a logger scoped to the plugin descriptor manager.
func Plugin() *zerolog.Logger { return ComponentLogger(ComponentPlugin) }

// Value creates a logger scoped to value marshalling / serial codecs.
func Value() *zerolog.Logger { return ComponentLogger(ComponentValue) }

// HTTP creates a logger for the façade demo HTTP server.
func HTTP() *zerolog.Logger { return ComponentLogger(ComponentHTTP) }
