package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/calvinalkan/notebook/internal/logging"
)

func TestNew_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log, err := logging.New(&buf, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered:\n%s", out)
	}

	if !strings.Contains(out, "shown") || !strings.Contains(out, "WARN") {
		t.Errorf("warn line missing:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{"debug", false},
		{"error", false},
		{"loud", true},
	} {
		_, err := logging.ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err=%v, wantErr=%v", tt.name, err, tt.wantErr)
		}
	}
}
