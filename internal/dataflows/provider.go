package dataflows

import (
	"context"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

// PriceProvider abstracts where daily OHLC history comes from.
type PriceProvider interface {
	FetchPriceHistory(ctx context.Context, symbol string, days int) (models.PriceHistory, error)
}

// NewPriceProvider picks the configured market data backend.
func NewPriceProvider(cfg *config.Config) PriceProvider {
	if cfg.MarketDataProvider == config.MarketDataYahoo {
		return NewYahooClient(cfg)
	}
	return NewFMPClient(cfg)
}
