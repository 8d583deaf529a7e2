package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

const spotgammaBaseURL = "https://api.spotgamma.com"

// SpotGammaClient fetches dealer gamma levels from the SpotGamma API.
type SpotGammaClient struct {
	client *resty.Client
	secret string
}

// NewSpotGammaClient creates a new SpotGamma client
func NewSpotGammaClient(cfg *config.Config) *SpotGammaClient {
	client := resty.New()
	client.SetBaseURL(spotgammaBaseURL)
	client.SetTimeout(cfg.IndicatorTimeout)

	return &SpotGammaClient{
		client: client,
		secret: cfg.IndicatorTokenSecret,
	}
}

// spotgammaLevels mirrors one row of the levelsBySym response. The
// strike is a pointer so an absent field is distinguishable from zero.
type spotgammaLevels struct {
	Sym         string   `json:"sym"`
	TradeDate   string   `json:"trade_date"`
	ZeroGStrike *float64 `json:"zero_g_strike"`
}

// FetchZeroGamma requests the current zero gamma strike for a symbol.
// A fresh token is minted per call and exactly one request goes out,
// with no retries.
func (sc *SpotGammaClient) FetchZeroGamma(ctx context.Context, symbol string) (models.ZeroGammaLevel, error) {
	endpoint := "/v2/levelsBySym"
	fail := func(status int, err error) (models.ZeroGammaLevel, error) {
		return models.ZeroGammaLevel{}, &models.UpstreamError{
			Service:    models.ServiceIndicator,
			Endpoint:   endpoint,
			StatusCode: status,
			Err:        err,
		}
	}

	token, err := mintToken(sc.secret, time.Now())
	if err != nil {
		return fail(0, err)
	}

	resp, err := sc.client.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"User-Agent":       "Mozilla/5.0",
			"Accept":           "application/json",
			"x-json-web-token": token,
		}).
		SetQueryParams(map[string]string{
			"sym": symbol,
		}).
		Get(endpoint)
	if err != nil {
		return fail(0, fmt.Errorf("failed to fetch levels for %s: %w", symbol, err))
	}
	if resp.StatusCode() != 200 {
		return fail(resp.StatusCode(), fmt.Errorf("levels request rejected: %s", resp.String()))
	}

	var rows []spotgammaLevels
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return fail(0, fmt.Errorf("failed to parse levels response: %w", err))
	}
	if len(rows) == 0 {
		return fail(0, fmt.Errorf("no levels returned for %s", symbol))
	}

	row := rows[0]
	if row.ZeroGStrike == nil {
		return fail(0, fmt.Errorf("zero_g_strike missing for %s", symbol))
	}

	return models.ZeroGammaLevel{
		Symbol:    symbol,
		TradeDate: row.TradeDate,
		Strike:    *row.ZeroGStrike,
	}, nil
}
