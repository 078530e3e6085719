package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/launcher"
	"github.com/pders01/nearby/internal/netwatch"
	"github.com/pders01/nearby/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:          "nearby",
	Short:        "Find places around a point of interest",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		if !quiet {
			tui.ShowBanner(Version)
		}
		return runInteractive(commandContext(cmd), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: off, error, warn, info, debug (overrides config)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, importCmd, searchCmd, favoritesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration, applies flag overrides and starts logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
	}
	return cfg, nil
}

func userConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nearby")
}

func runInteractive(ctx context.Context, cfg *config.Config) error {
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	engine := rt.newEngine()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if cfg.Network.ProbeURL != "" {
		prober := netwatch.NewHTTPProber(cfg.Network.ProbeURL, cfg.Provider.HTTPTimeout)
		netwatch.New(rt.bus, prober, cfg.Network.ProbeInterval).Start(watchCtx)
	}

	debuglog.Infof("starting nearby %s around %q", Version, cfg.Places.POI)
	return tui.Run(cfg, rt.bus, tui.Deps{
		Engine:     engine,
		Details:    rt.service,
		Launcher:   launcher.New(cfg.Launcher),
		Categories: loadCategories(),
	})
}
