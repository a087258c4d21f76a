package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "info", "json")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		logger.Debug("hidden")
		logger.Info("task completed", "task_id", "t1")

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
		}
		if line["msg"] != "task completed" || line["task_id"] != "t1" {
			t.Errorf("line = %v", line)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "warn", "text")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		logger.Info("hidden")
		logger.Warn("bill overdue")
		if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "bill overdue") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
			t.Error("expected error")
		}
	})
}
