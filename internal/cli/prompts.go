package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/GammaPulse/internal/config"
)

// PromptForCredentials collects the API credentials a run needs.
func PromptForCredentials(cfg *config.Config) error {
	prompts := []struct {
		message string
		help    string
		target  *string
	}{
		{
			message: "SpotGamma token secret:",
			help:    "Shared secret used to sign the levels API token.",
			target:  &cfg.IndicatorTokenSecret,
		},
		{
			message: "Financial Modeling Prep API key:",
			help:    "Create one at https://financialmodelingprep.com/developer.",
			target:  &cfg.FMPAPIKey,
		},
		{
			message: "OpenRouter API key:",
			help:    "Create one at https://openrouter.ai/keys.",
			target:  &cfg.OpenRouterAPIKey,
		},
		{
			message: "Telegram bot token:",
			help:    "Token issued by @BotFather for your bot.",
			target:  &cfg.TelegramBotToken,
		},
	}

	for _, p := range prompts {
		var value string
		prompt := &survey.Password{
			Message: p.message,
			Help:    p.help,
		}
		if err := survey.AskOne(prompt, &value, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		*p.target = strings.TrimSpace(value)
	}

	var chatID string
	chatPrompt := &survey.Input{
		Message: "Telegram chat ID:",
		Help:    "Numeric chat to deliver briefings to. Group chats are negative numbers.",
	}
	err := survey.AskOne(chatPrompt, &chatID, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return fmt.Errorf("chat ID cannot be empty")
		}
		if _, err := strconv.ParseInt(str, 10, 64); err != nil {
			return fmt.Errorf("chat ID must be an integer")
		}
		return nil
	}))
	if err != nil {
		return err
	}
	cfg.TelegramChatID = strings.TrimSpace(chatID)

	return nil
}

// PromptForOptions collects the non-credential run options.
func PromptForOptions(cfg *config.Config) error {
	symbolOptions := []string{
		"SPX - S&P 500",
		"NDX - Nasdaq 100",
		"DJI - Dow Jones Industrial Average",
		"RUT - Russell 2000",
		"VIX - CBOE Volatility Index",
	}
	var symbol string
	symbolPrompt := &survey.Select{
		Message: "Select the index to track:",
		Options: symbolOptions,
		Help:    "The briefing covers a single index per run.",
		Default: symbolOptions[0],
	}
	if err := survey.AskOne(symbolPrompt, &symbol); err != nil {
		return err
	}
	cfg.Symbol = strings.Split(symbol, " -")[0]

	providerOptions := []string{
		config.ProviderOpenRouter + " - OpenRouter (free tier available)",
		config.ProviderDeepSeek + " - DeepSeek direct API",
	}
	var provider string
	providerPrompt := &survey.Select{
		Message: "Select the analysis provider:",
		Options: providerOptions,
		Help:    "The hosted model that writes the briefing text.",
		Default: providerOptions[0],
	}
	if err := survey.AskOne(providerPrompt, &provider); err != nil {
		return err
	}
	cfg.AnalysisProvider = strings.Split(provider, " -")[0]

	if cfg.AnalysisProvider == config.ProviderDeepSeek {
		var deepseekKey string
		keyPrompt := &survey.Password{
			Message: "DeepSeek API key:",
			Help:    "Create one at https://platform.deepseek.com.",
		}
		if err := survey.AskOne(keyPrompt, &deepseekKey, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		cfg.DeepSeekAPIKey = strings.TrimSpace(deepseekKey)
	}

	var model string
	modelPrompt := &survey.Input{
		Message: "Model override (leave empty for the provider default):",
		Help:    "Full model identifier, e.g. deepseek/deepseek-chat-v3-0324:free.",
	}
	if err := survey.AskOne(modelPrompt, &model); err != nil {
		return err
	}
	cfg.AnalysisModel = strings.TrimSpace(model)

	marketDataOptions := []string{
		config.MarketDataFMP + " - Financial Modeling Prep",
		config.MarketDataYahoo + " - Yahoo Finance (no key required)",
	}
	var marketData string
	marketDataPrompt := &survey.Select{
		Message: "Select the market data provider:",
		Options: marketDataOptions,
		Help:    "Source of the daily OHLC history.",
		Default: marketDataOptions[0],
	}
	if err := survey.AskOne(marketDataPrompt, &marketData); err != nil {
		return err
	}
	cfg.MarketDataProvider = strings.Split(marketData, " -")[0]

	return nil
}

// PromptForConfirmation shows the collected selections and asks the
// user to confirm before anything is written.
func PromptForConfirmation(cfg *config.Config) (bool, error) {
	model := cfg.AnalysisModel
	if model == "" {
		model = "(provider default)"
	}

	summary := fmt.Sprintf(`
Configuration Summary:
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

📊 Symbol:              %s
🤖 Analysis Provider:   %s
🧠 Model:               %s
📈 Market Data:         %s
💬 Telegram Chat ID:    %s

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
`,
		cfg.Symbol,
		cfg.AnalysisProvider,
		model,
		cfg.MarketDataProvider,
		cfg.TelegramChatID,
	)

	fmt.Println(summary)

	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Write this configuration to .env?",
		Default: true,
	}

	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}

// PromptForOverwrite asks before clobbering an existing env file.
func PromptForOverwrite(path string) (bool, error) {
	var overwrite bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s already exists. Overwrite it?", path),
		Default: false,
	}

	err := survey.AskOne(prompt, &overwrite)
	return overwrite, err
}
