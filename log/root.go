package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	VMMonitoring     = "vm"      // instruction execution and lifecycle
	HostMonitoring   = "host"    // pipelines, rings and controllers
	StoreMonitoring  = "store"   // program library
	BridgeMonitoring = "bridge"  // websocket bridge
	CLIMonitoring    = "cli"     // command line front end
	VectorMonitoring = "vectors" // recorded run checks
)

var root atomic.Value

func init() {
	root.Store(NewLogger(DiscardHandler()))
}

// ParseLevel accepts trace, debug, info, warn(ing) and error in any case.
func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return 0, fmt.Errorf("invalid level: %q", lvl)
}

// InitLoggerTo installs a root logger writing to w, as text or JSON.
func InitLoggerTo(w io.Writer, level string, json bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if json {
		SetDefault(NewLogger(NewJSONHandlerWithLevel(w, lvl)))
	} else {
		SetDefault(NewLogger(NewTerminalHandlerWithLevel(w, lvl, false)))
	}
	return nil
}

// SetDefault replaces the root logger.
func SetDefault(l Logger) {
	root.Store(l)
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

var modules sync.Map // module name -> bool

// EnableModule turns on trace and debug records for module.
func EnableModule(module string) {
	modules.Store(module, true)
}

// EnableModules enables every module in a comma separated list.
func EnableModules(list string) {
	for _, m := range strings.Split(list, ",") {
		if m = strings.TrimSpace(m); m != "" {
			EnableModule(m)
		}
	}
}

func DisableModule(module string) {
	modules.Delete(module)
}

func IsModuleEnabled(module string) bool {
	_, ok := modules.Load(module)
	return ok
}

func Trace(module string, msg string, kv ...any) {
	if IsModuleEnabled(module) {
		Root().Write(LevelTrace, module, msg, kv...)
	}
}

func Debug(module string, msg string, kv ...any) {
	if IsModuleEnabled(module) {
		Root().Write(LevelDebug, module, msg, kv...)
	}
}

// Info, Warn and Error are not filtered by module.
func Info(module string, msg string, kv ...any) {
	Root().Write(LevelInfo, module, msg, kv...)
}

func Warn(module string, msg string, kv ...any) {
	Root().Write(LevelWarn, module, msg, kv...)
}

func Error(module string, msg string, kv ...any) {
	Root().Write(LevelError, module, msg, kv...)
}
