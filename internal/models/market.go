package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ZeroGammaLevel is the dealer-neutral gamma strike the indicator API
// reports for a single trading day.
type ZeroGammaLevel struct {
	Symbol    string  `json:"symbol"`
	TradeDate string  `json:"trade_date"`
	Strike    float64 `json:"strike"`
}

// PriceRecord is one daily OHLC bar.
type PriceRecord struct {
	Date  string          `json:"date"`
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}

// PriceHistory holds recent daily bars for a symbol ordered oldest to
// newest, plus the latest traded price.
type PriceHistory struct {
	Symbol       string          `json:"symbol"`
	Records      []PriceRecord   `json:"records"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// Empty reports whether the history carries no bars at all.
func (h PriceHistory) Empty() bool {
	return len(h.Records) == 0
}

// CSV renders the bars as a Date,Open,High,Low,Close table with
// two-decimal prices. This is the exact payload the analysis prompt
// embeds.
func (h PriceHistory) CSV() string {
	var sb strings.Builder
	sb.WriteString("Date,Open,High,Low,Close")
	for _, r := range h.Records {
		sb.WriteString("\n")
		sb.WriteString(r.Date)
		sb.WriteString(",")
		sb.WriteString(r.Open.StringFixed(2))
		sb.WriteString(",")
		sb.WriteString(r.High.StringFixed(2))
		sb.WriteString(",")
		sb.WriteString(r.Low.StringFixed(2))
		sb.WriteString(",")
		sb.WriteString(r.Close.StringFixed(2))
	}
	return sb.String()
}
