package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	logger.Info("pack loaded", "pack_id", "acme-job-sheets")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "pack loaded" {
		t.Errorf("msg = %v, want %q", record["msg"], "pack loaded")
	}
	if record["pack_id"] != "acme-job-sheets" {
		t.Errorf("pack_id = %v, want acme-job-sheets", record["pack_id"])
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	logger.Info("pack loaded")

	if !strings.Contains(buf.String(), "msg=\"pack loaded\"") {
		t.Errorf("output = %q, want logfmt text", buf.String())
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %s", buf.String())
	}

	logger.Warn("visible")
	if buf.Len() == 0 {
		t.Error("warn record suppressed at warn level")
	}
}

func TestNew_Defaults(t *testing.T) {
	if _, err := New(Config{}); err != nil {
		t.Errorf("New(empty config) error = %v, want nil (defaults apply)", err)
	}
}

func TestNew_InvalidValues(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() error = nil for unknown level, want error")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() error = nil for unknown format, want error")
	}
}
