// Package logger holds the process wide zap logger of the command line tool.
// Library code receives its logger through gofat16.WithLogger instead.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// New builds a console logger writing to w. Debug messages are only written
// if verbose is set. Levels are colored if w is a terminal.
func New(w io.Writer, verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// Logger returns the current logger. It discards everything until SetLogger is called.
func Logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger replaces the current logger. nil restores the discarding logger.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	mu.Lock()
	log = l
	mu.Unlock()
}
