package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("empty context carries %q", got)
	}
	ctx := ContextWithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID = %q", got)
	}
}

func TestContextHelpersTagRequestID(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	var buf bytes.Buffer
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, nil))

	InfoContext(ContextWithRequestID(context.Background(), "req-7"), "Task created", "task_id", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if record["request_id"] != "req-7" || record["msg"] != "Task created" {
		t.Errorf("record = %v", record)
	}
}

func TestInitFileOutput(t *testing.T) {
	prev := defaultLogger
	prevDefault := slog.Default()
	t.Cleanup(func() {
		defaultLogger = prev
		slog.SetDefault(prevDefault)
	})

	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.Format = "text"
	cfg.Level = "debug"
	cfg.FilePath = filepath.Join(t.TempDir(), "nested", "taskflow.log")
	if err := Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Debug("Reminder delivered", "id", 1)

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(data, []byte("Reminder delivered")) {
		t.Errorf("log file = %q", data)
	}
}
