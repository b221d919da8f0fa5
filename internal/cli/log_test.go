package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"InfoAtInfo", log.InfoLevel, func(l *log.Logger) { l.Info("merged", "links", 3) }, true},
		{"DebugAtInfo", log.InfoLevel, func(l *log.Logger) { l.Debug("progress", "pct", 50) }, false},
		{"DebugAtDebug", log.DebugLevel, func(l *log.Logger) { l.Debug("progress", "pct", 50) }, true},
		{"WarnAtError", log.ErrorLevel, func(l *log.Logger) { l.Warn("cache unavailable") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v (%q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestNewLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("merged networks", "nodes", 4)

	out := buf.String()
	for _, want := range []string{"merged networks", "nodes=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line = %q, want it to contain %q", out, want)
		}
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Merged 4 nodes")

	if out := buf.String(); !strings.Contains(out, "Merged 4 nodes (") {
		t.Errorf("done() output = %q, want message with duration", out)
	}
}
