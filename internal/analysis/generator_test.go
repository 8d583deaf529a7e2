package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dyike/GammaPulse/internal/models"
)

type fakeChatModel struct {
	reply    *schema.Message
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func testLevel() models.ZeroGammaLevel {
	return models.ZeroGammaLevel{Symbol: "SPX", TradeDate: "2024-03-15", Strike: 5123.5}
}

func testHistory() models.PriceHistory {
	rec := func(date string, close float64) models.PriceRecord {
		d := decimal.NewFromFloat(close)
		return models.PriceRecord{Date: date, Open: d, High: d, Low: d, Close: d}
	}
	return models.PriceHistory{
		Symbol:       "SPX",
		Records:      []models.PriceRecord{rec("2024-03-13", 5128.1), rec("2024-03-14", 5150.8), rec("2024-03-15", 5170.3)},
		CurrentPrice: decimal.NewFromFloat(5170.3),
	}
}

func newFakeGenerator(t *testing.T, reply string, err error) (*Generator, *fakeChatModel) {
	t.Helper()

	fake := &fakeChatModel{err: err}
	if err == nil {
		fake.reply = schema.AssistantMessage(reply, nil)
	}
	gen, cerr := newGeneratorWithModel(context.Background(), fake, "test-model", zap.NewNop())
	if cerr != nil {
		t.Fatalf("failed to build generator: %v", cerr)
	}
	return gen, fake
}

func TestGenerateFormatsStructuredReply(t *testing.T) {
	reply := `{"zero_gamma_significance":"Spot sits just above the flip point.","trend":"Mildly bullish.","implications":["Dips toward 5123 likely get bought.","Volatility stays muted above the level."]}`
	gen, fake := newFakeGenerator(t, reply, nil)

	result, err := gen.Generate(context.Background(), testLevel(), testHistory())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := "**Zero Gamma**: Spot sits just above the flip point.\n" +
		"**Trend**: Mildly bullish.\n" +
		"**Implications**:\n" +
		"- Dips toward 5123 likely get bought.\n" +
		"- Volatility stays muted above the level."
	if result.Text != want {
		t.Errorf("formatted text mismatch:\ngot:\n%s\nwant:\n%s", result.Text, want)
	}
	if result.Model != "test-model" {
		t.Errorf("model = %q, want test-model", result.Model)
	}

	if len(fake.received) != 1 {
		t.Fatalf("model received %d messages, want 1", len(fake.received))
	}
	msg := fake.received[0]
	if msg.Role != schema.User {
		t.Errorf("message role = %q, want user", msg.Role)
	}
	for _, frag := range []string{
		"Analyze the following market data for SPX",
		"Zero Gamma Level: $5123.50",
		"Recent 3-Day OHLC Data:",
		"Date,Open,High,Low,Close",
		"2024-03-13",
		`"zero_gamma_significance"`,
	} {
		if !strings.Contains(msg.Content, frag) {
			t.Errorf("prompt missing %q:\n%s", frag, msg.Content)
		}
	}
}

func TestGenerateStripsCodeFence(t *testing.T) {
	reply := "```json\n{\"zero_gamma_significance\":\"Pivot zone.\",\"trend\":\"Sideways.\",\"implications\":[\"Expect chop.\"]}\n```"
	gen, _ := newFakeGenerator(t, reply, nil)

	result, err := gen.Generate(context.Background(), testLevel(), testHistory())
	if err != nil {
		t.Fatalf("Generate failed on fenced JSON: %v", err)
	}
	if !strings.Contains(result.Text, "**Trend**: Sideways.") {
		t.Errorf("unexpected text:\n%s", result.Text)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"transport error", "", errors.New("connection reset")},
		{"empty content", "   ", nil},
		{"invalid json", "the market looks fine to me", nil},
		{"missing trend", `{"zero_gamma_significance":"x","implications":["y"]}`, nil},
		{"empty implications", `{"zero_gamma_significance":"x","trend":"flat","implications":[]}`, nil},
		{"unusable implications", `{"zero_gamma_significance":"x","trend":"flat","implications":[42,"  "]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, _ := newFakeGenerator(t, tt.reply, tt.err)

			_, err := gen.Generate(context.Background(), testLevel(), testHistory())
			if err == nil {
				t.Fatal("expected an error")
			}
			var ue *models.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("error type = %T, want *models.UpstreamError", err)
			}
			if ue.Service != models.ServiceAnalysis {
				t.Errorf("service = %q, want %q", ue.Service, models.ServiceAnalysis)
			}
		})
	}
}

func TestGenerateSkipsUnusableImplicationItems(t *testing.T) {
	reply := `{"zero_gamma_significance":"x","trend":"flat","implications":[17,"Real takeaway.",""]}`
	gen, _ := newFakeGenerator(t, reply, nil)

	result, err := gen.Generate(context.Background(), testLevel(), testHistory())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasSuffix(result.Text, "- Real takeaway.") {
		t.Errorf("text should keep only the usable bullet:\n%s", result.Text)
	}
}
