package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyike/GammaPulse/internal/models"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", context.Canceled, 130},
		{"wrapped interrupt", fmt.Errorf("run: %w", context.Canceled), 130},
		{"config failure", &models.ConfigError{Missing: []string{"FMP_API_KEY"}}, 1},
		{"upstream failure", &models.UpstreamError{Service: models.ServiceIndicator, Err: errors.New("boom")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// A run that dies on validation has to leave the failure in the file
// log, not only on the console.
func TestRootCommandLogsConfigFailure(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	t.Setenv("LOG_FILE", logPath)
	t.Setenv("LOG_LEVEL", "info")
	for _, key := range []string{
		"SPOTGAMMA_TOKEN_SECRET", "FMP_API_KEY", "OPENROUTER_API_KEY",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DEEPSEEK_API_KEY",
		"GAMMAPULSE_SYMBOL", "GAMMAPULSE_HISTORY_DAYS",
		"ANALYSIS_PROVIDER", "ANALYSIS_MODEL", "MARKET_DATA_PROVIDER",
		"INDICATOR_TIMEOUT", "MARKET_DATA_TIMEOUT", "ANALYSIS_TIMEOUT",
		"NOTIFY_TIMEOUT", "EINO_DEBUG",
	} {
		t.Setenv(key, "")
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("Execute should fail without credentials")
	}
	var cerr *models.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *models.ConfigError", err)
	}

	data, readErr := os.ReadFile(logPath)
	if readErr != nil {
		t.Fatalf("reading %s: %v", logPath, readErr)
	}
	content := string(data)
	for _, want := range []string{"configuration invalid", "FMP_API_KEY", "TELEGRAM_BOT_TOKEN"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q:\n%s", want, content)
		}
	}
}
