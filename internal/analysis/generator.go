package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/models"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	defaultOpenRouterModel = "xiaomi/mimo-v2-flash:free"
	defaultDeepSeekModel   = "deepseek-chat"

	// The reply is a tight JSON object, so a small completion budget is
	// plenty and keeps free-tier models inside their limits.
	analysisMaxTokens = 250
)

const analysisPromptTemplate = `Analyze the following market data for {symbol}:

Zero Gamma Level: ${zero_gamma_level}

Recent {window_days}-Day OHLC Data:
{ohlc_csv}

    Return ONLY a JSON object with these fields:
    {{
        "zero_gamma_significance": "string",
        "trend": "string",
        "implications": ["string", "string", "string"]
    }}

    Constraints:
    - Max 120 words total across all fields
    - Use short, direct sentences
    - No headers, no extra keys, no Markdown
    - The implications array should contain 2-4 short bullets`

// Generator produces the market commentary for one pipeline run. The
// prompt template and chat model are compiled into a chain once, at
// construction.
type Generator struct {
	chain     compose.Runnable[map[string]any, *schema.Message]
	modelName string
	log       *zap.Logger
}

// NewGenerator builds the configured chat model: OpenRouter through its
// OpenAI-compatible endpoint, or DeepSeek natively.
func NewGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Generator, error) {
	modelName := resolveModel(cfg)

	var chatModel model.BaseChatModel
	var err error
	if cfg.AnalysisProvider == config.ProviderDeepSeek {
		chatModel, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     modelName,
			MaxTokens: analysisMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
		}
	} else {
		maxTokens := analysisMaxTokens
		temperature := float32(0.7)
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     openRouterBaseURL,
			APIKey:      cfg.OpenRouterAPIKey,
			Model:       modelName,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenRouter model: %w", err)
		}
	}

	return newGeneratorWithModel(ctx, chatModel, modelName, log)
}

// newGeneratorWithModel compiles the prompt-to-model chain around any
// chat model implementation.
func newGeneratorWithModel(ctx context.Context, chatModel model.BaseChatModel, modelName string, log *zap.Logger) (*Generator, error) {
	promptTemp := prompt.FromMessages(schema.FString,
		schema.UserMessage(analysisPromptTemplate),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendLambda(compose.InvokableLambdaWithOption(
		func(ctx context.Context, variables map[string]any, opts ...any) ([]*schema.Message, error) {
			return promptTemp.Format(ctx, variables)
		}))
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile analysis chain: %w", err)
	}

	return &Generator{chain: runnable, modelName: modelName, log: log}, nil
}

func resolveModel(cfg *config.Config) string {
	if cfg.AnalysisModel != "" {
		return cfg.AnalysisModel
	}
	if cfg.AnalysisProvider == config.ProviderDeepSeek {
		return defaultDeepSeekModel
	}
	return defaultOpenRouterModel
}

// Generate prompts the model with the indicator level and the OHLC
// window, then validates and reformats the structured reply. Exactly
// one completion request goes out, with no retries.
func (g *Generator) Generate(ctx context.Context, level models.ZeroGammaLevel, history models.PriceHistory) (models.AnalysisResult, error) {
	fail := func(err error) (models.AnalysisResult, error) {
		return models.AnalysisResult{}, &models.UpstreamError{
			Service:  models.ServiceAnalysis,
			Endpoint: g.modelName,
			Err:      err,
		}
	}

	variables := map[string]any{
		"symbol":           level.Symbol,
		"zero_gamma_level": fmt.Sprintf("%.2f", level.Strike),
		"window_days":      strconv.Itoa(len(history.Records)),
		"ohlc_csv":         history.CSV(),
	}

	reply, err := g.chain.Invoke(ctx, variables, compose.WithCallbacks(newModelCallback(g.log)))
	if err != nil {
		return fail(fmt.Errorf("chat completion failed: %w", err))
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return fail(errors.New("model returned empty analysis content"))
	}

	text, err := formatStructuredAnalysis(reply.Content)
	if err != nil {
		return fail(err)
	}

	return models.AnalysisResult{Text: text, Model: g.modelName}, nil
}
