package dataflows

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.IndicatorTokenSecret = "test-secret"
	cfg.FMPAPIKey = "test-fmp"
	cfg.OpenRouterAPIKey = "test-or"
	cfg.TelegramBotToken = "test-bot"
	cfg.TelegramChatID = "42"
	return cfg
}

func newTestSpotGamma(t *testing.T, handler http.HandlerFunc) *SpotGammaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sc := NewSpotGammaClient(testConfig())
	sc.client.SetBaseURL(srv.URL)
	return sc
}

func TestFetchZeroGamma(t *testing.T) {
	var gotToken, gotSym, gotAccept string
	sc := newTestSpotGamma(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-json-web-token")
		gotSym = r.URL.Query().Get("sym")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"sym":"SPX","trade_date":"2024-03-15","zero_g_strike":5123.5}]`))
	})

	level, err := sc.FetchZeroGamma(context.Background(), "SPX")
	if err != nil {
		t.Fatalf("FetchZeroGamma failed: %v", err)
	}
	if level.Strike != 5123.5 {
		t.Errorf("strike = %v, want 5123.5", level.Strike)
	}
	if level.TradeDate != "2024-03-15" {
		t.Errorf("trade date = %q", level.TradeDate)
	}
	if level.Symbol != "SPX" {
		t.Errorf("symbol = %q", level.Symbol)
	}
	if gotSym != "SPX" {
		t.Errorf("sym query param = %q", gotSym)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept header = %q", gotAccept)
	}

	parts := strings.Split(gotToken, ".")
	if len(parts) != 3 {
		t.Fatalf("request token has %d segments, want 3", len(parts))
	}
	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if parts[2] != base64.RawURLEncoding.EncodeToString(mac.Sum(nil)) {
		t.Error("request token does not verify against the configured secret")
	}
}

func TestFetchZeroGammaErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"auth rejected", http.StatusUnauthorized, `{"message":"bad token"}`, 401},
		{"server error", http.StatusInternalServerError, "boom", 500},
		{"empty array", http.StatusOK, `[]`, 0},
		{"not an array", http.StatusOK, `{"sym":"SPX"}`, 0},
		{"strike missing", http.StatusOK, `[{"sym":"SPX","trade_date":"2024-03-15"}]`, 0},
		{"malformed body", http.StatusOK, `{{{`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestSpotGamma(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := sc.FetchZeroGamma(context.Background(), "SPX")
			if err == nil {
				t.Fatal("expected an error")
			}
			var ue *models.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("error type = %T, want *models.UpstreamError", err)
			}
			if ue.Service != models.ServiceIndicator {
				t.Errorf("service = %q, want %q", ue.Service, models.ServiceIndicator)
			}
			if ue.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", ue.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestFetchZeroGammaSingleRequest(t *testing.T) {
	calls := 0
	sc := newTestSpotGamma(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := sc.FetchZeroGamma(context.Background(), "SPX"); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("made %d requests, want exactly 1 (no retries)", calls)
	}
}
