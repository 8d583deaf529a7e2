package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

// YahooClient serves price history from Yahoo Finance. It needs no API
// key, which makes it a useful fallback when the FMP quota is spent.
type YahooClient struct{}

// NewYahooClient creates a new Yahoo Finance client. finance-go routes
// every request through one package-level HTTP client, so the market
// data timeout is installed there.
func NewYahooClient(cfg *config.Config) *YahooClient {
	finance.SetHTTPClient(&http.Client{Timeout: cfg.MarketDataTimeout})
	return &YahooClient{}
}

// FetchPriceHistory returns up to days daily bars ordered oldest to
// newest. The current price comes from the live quote, falling back to
// the newest close when the quote lookup fails. finance-go takes no
// context, so the blocking calls run in a goroutine and the select
// below honors cancellation while the client timeout bounds each
// request.
func (yc *YahooClient) FetchPriceHistory(ctx context.Context, symbol string, days int) (models.PriceHistory, error) {
	ticker := MarketSymbol(symbol)
	fail := func(err error) (models.PriceHistory, error) {
		return models.PriceHistory{}, &models.UpstreamError{
			Service:  models.ServiceMarketData,
			Endpoint: "yahoo/" + ticker,
			Err:      err,
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	type fetchResult struct {
		history models.PriceHistory
		err     error
	}
	resultChan := make(chan fetchResult, 1)
	go func() {
		history, err := fetchYahooHistory(ticker, symbol, days)
		resultChan <- fetchResult{history: history, err: err}
	}()

	select {
	case result := <-resultChan:
		if result.err != nil {
			return fail(result.err)
		}
		return result.history, nil
	case <-ctx.Done():
		return fail(ctx.Err())
	}
}

func fetchYahooHistory(ticker, symbol string, days int) (models.PriceHistory, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	records := make([]models.PriceRecord, 0, days)
	for iter.Next() {
		bar := iter.Bar()
		records = append(records, models.PriceRecord{
			Date:  time.Unix(int64(bar.Timestamp), 0).Format("2006-01-02"),
			Open:  bar.Open,
			High:  bar.High,
			Low:   bar.Low,
			Close: bar.Close,
		})
	}
	if err := iter.Err(); err != nil {
		return models.PriceHistory{}, fmt.Errorf("failed to get historical data for %s: %w", ticker, err)
	}

	history := models.PriceHistory{Symbol: symbol, Records: records}
	if history.Empty() {
		return models.PriceHistory{}, fmt.Errorf("no historical data returned for %s", ticker)
	}

	history.CurrentPrice = records[len(records)-1].Close
	if q, err := quote.Get(ticker); err == nil && q != nil {
		history.CurrentPrice = decimal.NewFromFloat(q.RegularMarketPrice)
	}

	return history, nil
}
