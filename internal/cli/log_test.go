package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("exported") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("export state") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("export state") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("cache unavailable") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("draft saved")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).Match(buf.Bytes()) {
		t.Errorf("missing timestamp prefix: %q", buf.String())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Exported gera-post-geral.png")

	out := buf.String()
	if !strings.Contains(out, "Exported gera-post-geral.png (") || !strings.Contains(out, "s)") {
		t.Errorf("unexpected progress line: %q", out)
	}
}

func TestMute(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	restore := mute(l, &buf)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("muted logger wrote %q", buf.String())
	}
	restore()
	l.Info("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("restored logger wrote %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	loggerFromContext(ctx).Info("from context")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}
}
