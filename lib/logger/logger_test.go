package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLoggerLocal(t *testing.T) {
	log := SetupLogger(envLocal, "")
	if log == nil {
		t.Fatal("nil logger")
	}
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("local logger must accept debug records")
	}
}

func TestSetupLoggerProdWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := SetupLogger(envProd, path)

	if log.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("prod logger must drop debug records")
	}
	log.Info("started", slog.String("component", "api"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"started"`) || !strings.Contains(line, `"component":"api"`) {
		t.Fatalf("log line not JSON: %q", line)
	}
}
