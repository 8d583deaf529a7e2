package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/GammaPulse/consts"
	"github.com/dyike/GammaPulse/internal/analysis"
	"github.com/dyike/GammaPulse/internal/config"
	"github.com/dyike/GammaPulse/internal/dataflows"
	"github.com/dyike/GammaPulse/internal/debug"
	"github.com/dyike/GammaPulse/internal/display"
	"github.com/dyike/GammaPulse/internal/notifier"
	"github.com/dyike/GammaPulse/internal/pipeline"
	"github.com/dyike/GammaPulse/logger"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   consts.AppName + " [SYMBOL]",
		Short: "GammaPulse - Zero gamma market briefings",
		Long: `GammaPulse fetches the zero gamma level and recent price action for an
index, asks a hosted model for a short positioning read, and delivers
the briefing to Telegram.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := ""
			if len(args) == 1 {
				symbol = args[0]
			}
			return runPipeline(symbol)
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// ExitCode maps a command error to the process exit status. An
// interrupted run exits 130, any other failure exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

// runPipeline executes one briefing run end to end.
func runPipeline(symbolArg string) error {
	cfg := config.LoadUnchecked()
	if symbolArg != "" {
		cfg.Symbol = strings.ToUpper(strings.TrimSpace(symbolArg))
	}

	// The log sink comes up before validation so a broken environment
	// still leaves a trace in the file log.
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		display.ShowError(err)
		return err
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("configuration invalid",
			zap.String("stage", string(pipeline.StageConfig)),
			zap.Error(err))
		display.ShowError(err)
		return err
	}
	log.Info("configuration loaded",
		zap.String("stage", string(pipeline.StageConfig)),
		zap.String("symbol", cfg.Symbol),
		zap.String("analysis_provider", cfg.AnalysisProvider),
		zap.String("market_data_provider", cfg.MarketDataProvider))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug.InitEino(ctx, cfg.EinoDebug, log)

	generator, err := analysis.NewGenerator(ctx, cfg, log)
	if err != nil {
		log.Error("chat model setup failed", zap.Error(err))
		display.ShowError(err)
		return err
	}

	runner := pipeline.NewRunner(
		cfg,
		log,
		dataflows.NewSpotGammaClient(cfg),
		dataflows.NewPriceProvider(cfg),
		generator,
		notifier.NewTelegramNotifier(cfg),
	)

	display.ShowHeader(cfg.Symbol)

	result, err := runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			display.ShowInfo("Interrupted, shutting down")
			return context.Canceled
		}
		display.ShowError(err)
		return err
	}

	display.ShowResult(result)
	return nil
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("GammaPulse v%s\n", consts.AppVersion)
			fmt.Println(consts.AppTagline)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Inspect or set up the GammaPulse environment",
	}

	// config show subcommand
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(config.LoadUnchecked())
		},
	})

	// config init subcommand
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a .env file interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(".env")
		},
	})

	return configCmd
}

// showConfig displays the current configuration. Secrets are reported
// as configured or not, never echoed.
func showConfig(cfg *config.Config) {
	fmt.Println("📋 Current GammaPulse Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Symbol:               %s\n", cfg.Symbol)
	fmt.Printf("History Window:       %d days\n", cfg.HistoryDays)
	fmt.Printf("Analysis Provider:    %s\n", cfg.AnalysisProvider)
	if cfg.AnalysisModel != "" {
		fmt.Printf("Analysis Model:       %s\n", cfg.AnalysisModel)
	} else {
		fmt.Printf("Analysis Model:       (provider default)\n")
	}
	fmt.Printf("Market Data Provider: %s\n", cfg.MarketDataProvider)
	fmt.Println()
	fmt.Printf("Indicator Timeout:    %s\n", cfg.IndicatorTimeout)
	fmt.Printf("Market Data Timeout:  %s\n", cfg.MarketDataTimeout)
	fmt.Printf("Analysis Timeout:     %s\n", cfg.AnalysisTimeout)
	fmt.Printf("Notify Timeout:       %s\n", cfg.NotifyTimeout)
	fmt.Println()
	fmt.Printf("Log File:             %s\n", cfg.LogFile)
	fmt.Printf("Log Level:            %s\n", cfg.LogLevel)
	fmt.Printf("Eino Debug:           %t\n", cfg.EinoDebug)
	fmt.Println()

	fmt.Println("🔌 API Configuration:")
	fmt.Println("─────────────────────")
	showCredentialStatus("SpotGamma Token", cfg.IndicatorTokenSecret)
	showCredentialStatus("FMP API", cfg.FMPAPIKey)
	showCredentialStatus("OpenRouter API", cfg.OpenRouterAPIKey)
	showCredentialStatus("Telegram Bot", cfg.TelegramBotToken)
	showCredentialStatus("Telegram Chat ID", cfg.TelegramChatID)
	if cfg.AnalysisProvider == config.ProviderDeepSeek || cfg.DeepSeekAPIKey != "" {
		showCredentialStatus("DeepSeek API", cfg.DeepSeekAPIKey)
	}
}

func showCredentialStatus(name, value string) {
	status := "❌ Not configured"
	if strings.TrimSpace(value) != "" {
		status = "✅ Configured"
	}
	fmt.Printf("%-21s %s\n", name+":", status)
}

// runConfigInit walks the user through credentials and options, then
// writes them as a .env file.
func runConfigInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		overwrite, err := PromptForOverwrite(path)
		if err != nil {
			return err
		}
		if !overwrite {
			display.ShowInfo("Keeping existing " + path)
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := PromptForCredentials(cfg); err != nil {
		return err
	}
	if err := PromptForOptions(cfg); err != nil {
		return err
	}

	confirmed, err := PromptForConfirmation(cfg)
	if err != nil {
		return err
	}
	if !confirmed {
		display.ShowInfo("Nothing written")
		return nil
	}

	if err := cfg.Write(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("✅ Configuration written to %s\n", path)
	fmt.Printf("💡 Run '%s' to generate your first briefing\n", consts.AppName)
	return nil
}
