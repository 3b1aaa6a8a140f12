package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kafei-ai/treeflow/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("layout finished")

	if !strings.Contains(buf.String(), "layout finished (") {
		t.Errorf("progress output = %q, want message with duration", buf.String())
	}
}

func TestFileLogger(t *testing.T) {
	cfg := config.Default().Log
	cfg.File = filepath.Join(t.TempDir(), "logs", "treeflow.log")

	fl, err := newFileLogger(cfg, log.DebugLevel)
	if err != nil {
		t.Fatalf("newFileLogger() error: %v", err)
	}
	fl.Debug("toggle", "path", "src/app")
	if err := fl.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if got := string(data); !strings.Contains(got, "msg=toggle") || !strings.Contains(got, "path=src/app") {
		t.Errorf("log file = %q, want logfmt toggle line", got)
	}
}
