package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.IndicatorTokenSecret = "test-secret"
	cfg.FMPAPIKey = "test-fmp"
	cfg.OpenRouterAPIKey = "test-or"
	cfg.TelegramBotToken = "12345:bot-token"
	cfg.TelegramChatID = "-100200300"
	return cfg
}

func testInputs() (models.ZeroGammaLevel, models.PriceHistory, models.AnalysisResult) {
	level := models.ZeroGammaLevel{Symbol: "SPX", TradeDate: "2024-03-15", Strike: 5123.5}
	price := decimal.NewFromFloat(5170.3)
	history := models.PriceHistory{
		Symbol:       "SPX",
		Records:      []models.PriceRecord{{Date: "2024-03-15", Open: price, High: price, Low: price, Close: price}},
		CurrentPrice: price,
	}
	analysis := models.AnalysisResult{Text: "**Trend**: up", Model: "test-model"}
	return level, history, analysis
}

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tn := NewTelegramNotifier(testConfig())
	tn.client.SetBaseURL(srv.URL)
	return tn
}

func TestNotifyDelivers(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	})

	level, history, analysis := testInputs()
	outcome := tn.Notify(context.Background(), level, history, analysis)
	if !outcome.Delivered {
		t.Fatalf("delivery failed: %s", outcome.Detail)
	}

	if gotPath != "/bot12345:bot-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.ChatID != -100200300 {
		t.Errorf("chat_id = %d, want -100200300", gotBody.ChatID)
	}
	if gotBody.ParseMode != "HTML" {
		t.Errorf("parse_mode = %q, want HTML", gotBody.ParseMode)
	}
	for _, frag := range []string{
		"<b>SPX Market Analysis</b>",
		"<b>Current Price:</b> $5170.30",
		"<b>Zero Gamma Level:</b> $5123.50",
		"<b>Analysis:</b>",
		"<b>Trend</b>: up",
	} {
		if !strings.Contains(gotBody.Text, frag) {
			t.Errorf("message missing %q:\n%s", frag, gotBody.Text)
		}
	}
}

func TestNotifyReportsAPIFailure(t *testing.T) {
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"description":"bot was kicked"}`))
	})

	level, history, analysis := testInputs()
	outcome := tn.Notify(context.Background(), level, history, analysis)
	if outcome.Delivered {
		t.Fatal("delivery should fail on 403")
	}
	if !strings.Contains(outcome.Detail, "403") || !strings.Contains(outcome.Detail, "bot was kicked") {
		t.Errorf("detail should carry status and body, got %q", outcome.Detail)
	}
}

func TestNotifyRejectsBadChatIDWithoutCalling(t *testing.T) {
	calls := 0
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	tn.chatID = "not-a-number"

	level, history, analysis := testInputs()
	outcome := tn.Notify(context.Background(), level, history, analysis)
	if outcome.Delivered {
		t.Fatal("delivery should fail on a malformed chat ID")
	}
	if !strings.Contains(outcome.Detail, "invalid chat ID") {
		t.Errorf("detail = %q", outcome.Detail)
	}
	if calls != 0 {
		t.Errorf("no HTTP call should go out, got %d", calls)
	}
}

func TestNotifyTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	tn := NewTelegramNotifier(testConfig())
	tn.client.SetBaseURL(srv.URL)

	level, history, analysis := testInputs()
	outcome := tn.Notify(context.Background(), level, history, analysis)
	if outcome.Delivered {
		t.Fatal("delivery should fail when the API is unreachable")
	}
	if outcome.Detail == "" {
		t.Error("detail should describe the transport failure")
	}
}
