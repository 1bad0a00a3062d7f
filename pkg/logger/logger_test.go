package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"social-blog/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestPackageLoggerIsUsableBeforeInit(t *testing.T) {
	// must not panic
	Info("before init", zap.String("k", "v"))
	Warn("before init", zap.Int("n", 1))
}

func TestInitLoggerWritesJSONFile(t *testing.T) {
	prev := log
	t.Cleanup(func() { log = prev })

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	InitLogger(config.LogConfig{Level: "debug", Filename: path, MaxSize: 1})

	Info("friend request sent", zap.Uint("from", 1))
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"friend request sent"`) {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"bogus": zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := getLogLevel(in); got != want {
			t.Errorf("getLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
