package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := InitWithFormat("json"); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := InitWithFormat("xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, "json"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("service").Info(context.Background(), "transitions computed",
		Int64("source_org_id", 7),
		Int("hops", 3),
		Bool("role_filter", true),
		Duration("elapsed", 2*time.Millisecond),
	)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v: %q", err, buf.String())
	}
	if line["msg"] != "transitions computed" {
		t.Errorf("unexpected msg: %v", line["msg"])
	}
	group, ok := line["service"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields grouped under the logger name, got %v", line)
	}
	if group["source_org_id"] != float64(7) || group["role_filter"] != true {
		t.Errorf("unexpected fields: %v", group)
	}
	if _, ok := group["source"]; !ok {
		t.Error("expected the caller location")
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, "text"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	ctx := context.Background()
	l := Get()

	l.Debug(ctx, "hidden at info")
	if buf.Len() != 0 {
		t.Errorf("debug written at info level: %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("failed to set level: %v", err)
	}
	l.Debug(ctx, "visible at debug")
	if !strings.Contains(buf.String(), "visible at debug") {
		t.Errorf("debug missing at debug level: %q", buf.String())
	}

	buf.Reset()
	if err := SetLevelString("ERROR"); err != nil {
		t.Fatalf("failed to set level: %v", err)
	}
	l.Warn(ctx, "hidden at error")
	l.Error(ctx, "store failed", Error(errors.New("boom")))
	out := buf.String()
	if strings.Contains(out, "hidden at error") || !strings.Contains(out, "boom") {
		t.Errorf("unexpected output at error level: %q", out)
	}

	for _, lvl := range []string{"", "info", "warn", "warning"} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("level %q rejected: %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
