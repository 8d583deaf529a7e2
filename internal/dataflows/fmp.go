package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

const fmpBaseURL = "https://financialmodelingprep.com"

// indexSymbols maps pipeline symbols to the tickers the market data
// providers quote them under.
var indexSymbols = map[string]string{
	"SPX": "^GSPC",
	"NDX": "^NDX",
	"DJI": "^DJI",
	"RUT": "^RUT",
	"VIX": "^VIX",
}

// MarketSymbol resolves a pipeline symbol to its market data ticker.
// Unknown symbols pass through unchanged.
func MarketSymbol(symbol string) string {
	if ticker, ok := indexSymbols[symbol]; ok {
		return ticker
	}
	return symbol
}

// FMPClient pulls daily OHLC history from Financial Modeling Prep.
type FMPClient struct {
	client *resty.Client
	apiKey string
}

// NewFMPClient creates a new FMP client
func NewFMPClient(cfg *config.Config) *FMPClient {
	client := resty.New()
	client.SetBaseURL(fmpBaseURL)
	client.SetTimeout(cfg.MarketDataTimeout)

	return &FMPClient{
		client: client,
		apiKey: cfg.FMPAPIKey,
	}
}

type fmpHistoricalResponse struct {
	Symbol     string        `json:"symbol"`
	Historical []fmpDailyBar `json:"historical"`
}

type fmpDailyBar struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// FetchPriceHistory returns up to days daily bars ordered oldest to
// newest, with the newest close doubling as the current price. A
// shorter window than requested (young listing, holiday stretch) comes
// back as-is; only an empty window is an error.
func (fc *FMPClient) FetchPriceHistory(ctx context.Context, symbol string, days int) (models.PriceHistory, error) {
	ticker := MarketSymbol(symbol)
	endpoint := "/api/v3/historical-price-full/" + ticker
	fail := func(status int, err error) (models.PriceHistory, error) {
		return models.PriceHistory{}, &models.UpstreamError{
			Service:    models.ServiceMarketData,
			Endpoint:   endpoint,
			StatusCode: status,
			Err:        err,
		}
	}

	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey": fc.apiKey,
			"limit":  strconv.Itoa(days),
		}).
		Get(endpoint)
	if err != nil {
		return fail(0, fmt.Errorf("failed to fetch history for %s: %w", ticker, err))
	}
	if resp.StatusCode() != 200 {
		return fail(resp.StatusCode(), fmt.Errorf("history request rejected: %s", resp.String()))
	}

	var parsed fmpHistoricalResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return fail(0, fmt.Errorf("failed to parse history response: %w", err))
	}

	bars := parsed.Historical
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date < bars[j].Date
	})

	records := make([]models.PriceRecord, 0, len(bars))
	for _, bar := range bars {
		records = append(records, models.PriceRecord{
			Date:  bar.Date,
			Open:  decimal.NewFromFloat(bar.Open),
			High:  decimal.NewFromFloat(bar.High),
			Low:   decimal.NewFromFloat(bar.Low),
			Close: decimal.NewFromFloat(bar.Close),
		})
	}

	history := models.PriceHistory{Symbol: symbol, Records: records}
	if history.Empty() {
		return fail(0, fmt.Errorf("no historical data returned for %s", ticker))
	}
	history.CurrentPrice = records[len(records)-1].Close

	return history, nil
}
