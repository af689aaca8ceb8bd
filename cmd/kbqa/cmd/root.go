package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kbqa/internal/config"
	"kbqa/internal/logger"
	"kbqa/internal/metrics"
)

var (
	// cfgPath is the YAML config file; empty means ./config.yaml or the user config
	cfgPath string
	// metricsAddr overrides metrics.addr from the config
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "kbqa",
	Short: "Question answering over the Nutrition 101 corpus and your own notes",
	Long: `kbqa answers questions from documents it has indexed in a vector store.

Questions whose nearest chunk is too far away get a fixed fallback answer
instead of a generated one.

Examples:
  # Ask the built-in nutrition database
  kbqa nutrition
  kbqa nutrition -q "How much water should I drink?"

  # Open the knowledge base UI with some notes preloaded
  kbqa notes lecture*.pdf thesis.docx

  # One-shot question over files
  kbqa ask "What is mitosis?" --file biology.txt`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/kbqa/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
}

// env is what every command needs before wiring components.
type env struct {
	cfg     *config.AppConfig
	log     *zap.Logger
	metrics *metrics.Metrics
}

// loadConfig reads --config or the default locations.
func loadConfig() (*config.AppConfig, error) {
	_ = godotenv.Load()
	if cfgPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(cfgPath)
}

// setup loads config, builds the logger and starts the metrics listener.
// Interactive commands log to a file unless one is configured.
func setup(ctx context.Context, interactive bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if interactive && cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(os.TempDir(), "kbqa.log")
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	m := metrics.New()
	addr := cfg.Metrics.Addr
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr != "" {
		go func() {
			if err := m.Serve(ctx, addr, log); err != nil {
				log.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}
	return &env{cfg: cfg, log: log, metrics: m}, nil
}
