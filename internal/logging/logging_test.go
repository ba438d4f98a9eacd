package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" WARN ", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := New(tt.level, "text").GetLevel(); got != tt.want {
			t.Errorf("New(%q) level = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	logger := New("info", "JSON")
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	Component(logger, "runs").WithField("run_id", "abc").Info("✓ Run completed")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if line["component"] != "runs" || line["run_id"] != "abc" || line["msg"] != "✓ Run completed" {
		t.Errorf("unexpected fields %v", line)
	}
}

func TestTextFormatDefault(t *testing.T) {
	if _, ok := New("info", "").Formatter.(*logrus.TextFormatter); !ok {
		t.Error("expected text formatter by default")
	}
}
