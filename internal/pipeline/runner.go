package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

// Stage names the five steps of one run. Config validation happens
// before a Runner exists, so Run itself walks the remaining four.
type Stage string

const (
	StageConfig       Stage = "config"
	StageZeroGamma    Stage = "zero-gamma"
	StagePriceHistory Stage = "price-history"
	StageAnalysis     Stage = "analysis"
	StageNotify       Stage = "notify"
)

// GammaFetcher yields the indicator level for a symbol.
type GammaFetcher interface {
	FetchZeroGamma(ctx context.Context, symbol string) (models.ZeroGammaLevel, error)
}

// PriceProvider yields recent daily bars plus the current price.
type PriceProvider interface {
	FetchPriceHistory(ctx context.Context, symbol string, days int) (models.PriceHistory, error)
}

// Analyzer turns the level and the price window into commentary.
type Analyzer interface {
	Generate(ctx context.Context, level models.ZeroGammaLevel, history models.PriceHistory) (models.AnalysisResult, error)
}

// Notifier delivers the result. Its outcome is advisory and never
// fails the run.
type Notifier interface {
	Notify(ctx context.Context, level models.ZeroGammaLevel, history models.PriceHistory, analysis models.AnalysisResult) models.NotificationOutcome
}

// Result collects everything a completed run produced.
type Result struct {
	Level        models.ZeroGammaLevel
	History      models.PriceHistory
	Analysis     models.AnalysisResult
	Notification models.NotificationOutcome
}

// Runner drives the stages strictly in order. Every stage needs the
// previous one's output, so there is nothing to parallelize and no
// partial progress worth keeping: the first failure aborts the run.
type Runner struct {
	cfg      *config.Config
	log      *zap.Logger
	gamma    GammaFetcher
	prices   PriceProvider
	analyzer Analyzer
	notifier Notifier
}

// NewRunner wires the four stage collaborators together.
func NewRunner(cfg *config.Config, log *zap.Logger, gamma GammaFetcher, prices PriceProvider, analyzer Analyzer, notifier Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log,
		gamma:    gamma,
		prices:   prices,
		analyzer: analyzer,
		notifier: notifier,
	}
}

// Run executes one full pass for the configured symbol. A nil error
// means the analysis was produced; delivery trouble shows up only in
// Result.Notification.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	symbol := r.cfg.Symbol

	r.log.Info("fetching zero gamma level",
		zap.String("stage", string(StageZeroGamma)),
		zap.String("symbol", symbol))
	level, err := r.fetchZeroGamma(ctx, symbol)
	if err != nil {
		r.log.Error("zero gamma fetch failed",
			zap.String("stage", string(StageZeroGamma)),
			zap.Error(err))
		return nil, err
	}
	r.log.Info("zero gamma level received",
		zap.String("stage", string(StageZeroGamma)),
		zap.Float64("strike", level.Strike),
		zap.String("trade_date", level.TradeDate))

	r.log.Info("fetching price history",
		zap.String("stage", string(StagePriceHistory)),
		zap.String("symbol", symbol),
		zap.Int("days", r.cfg.HistoryDays))
	history, err := r.fetchPriceHistory(ctx, symbol)
	if err != nil {
		r.log.Error("price history fetch failed",
			zap.String("stage", string(StagePriceHistory)),
			zap.Error(err))
		return nil, err
	}
	if len(history.Records) < r.cfg.HistoryDays {
		r.log.Info("accepted partial history window",
			zap.String("stage", string(StagePriceHistory)),
			zap.Int("records", len(history.Records)),
			zap.Int("requested", r.cfg.HistoryDays))
	}
	r.log.Info("price history received",
		zap.String("stage", string(StagePriceHistory)),
		zap.Int("records", len(history.Records)),
		zap.String("current_price", history.CurrentPrice.StringFixed(2)))

	r.log.Info("generating analysis",
		zap.String("stage", string(StageAnalysis)))
	analysis, err := r.generateAnalysis(ctx, level, history)
	if err != nil {
		r.log.Error("analysis generation failed",
			zap.String("stage", string(StageAnalysis)),
			zap.Error(err))
		return nil, err
	}
	r.log.Info("analysis generated",
		zap.String("stage", string(StageAnalysis)),
		zap.String("model", analysis.Model),
		zap.Int("chars", len(analysis.Text)))

	r.log.Info("sending notification",
		zap.String("stage", string(StageNotify)))
	outcome := r.notify(ctx, level, history, analysis)
	if outcome.Delivered {
		r.log.Info("notification delivered",
			zap.String("stage", string(StageNotify)))
	} else {
		r.log.Warn("notification failed, continuing",
			zap.String("stage", string(StageNotify)),
			zap.String("detail", outcome.Detail))
	}

	r.log.Info("pipeline complete",
		zap.String("symbol", symbol),
		zap.Bool("notified", outcome.Delivered),
		zap.Duration("elapsed", time.Since(started)))

	return &Result{
		Level:        level,
		History:      history,
		Analysis:     analysis,
		Notification: outcome,
	}, nil
}

func (r *Runner) fetchZeroGamma(ctx context.Context, symbol string) (models.ZeroGammaLevel, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.IndicatorTimeout)
	defer cancel()
	return r.gamma.FetchZeroGamma(stageCtx, symbol)
}

func (r *Runner) fetchPriceHistory(ctx context.Context, symbol string) (models.PriceHistory, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.MarketDataTimeout)
	defer cancel()
	return r.prices.FetchPriceHistory(stageCtx, symbol, r.cfg.HistoryDays)
}

func (r *Runner) generateAnalysis(ctx context.Context, level models.ZeroGammaLevel, history models.PriceHistory) (models.AnalysisResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.AnalysisTimeout)
	defer cancel()
	return r.analyzer.Generate(stageCtx, level, history)
}

func (r *Runner) notify(ctx context.Context, level models.ZeroGammaLevel, history models.PriceHistory, analysis models.AnalysisResult) models.NotificationOutcome {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.NotifyTimeout)
	defer cancel()
	return r.notifier.Notify(stageCtx, level, history, analysis)
}
