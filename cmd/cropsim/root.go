package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cropsim/crop-dashboard/internal/catalog"
	"github.com/cropsim/crop-dashboard/internal/client"
	"github.com/cropsim/crop-dashboard/internal/config"
	"github.com/cropsim/crop-dashboard/internal/output"
)

// skipConfig marks commands that run without loading the configuration file.
const skipConfig = "skip-config"

// app carries global flags and the state built from them in PersistentPreRunE.
type app struct {
	configPath string
	baseURL    string
	locale     string
	verbose    bool

	cfg *config.Configuration
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cropsim",
		Short: "Browse, simulate and compare crops against a crop simulation service",
		Long: `cropsim is a client for a crop simulation service.

It lists the crop catalog, renders multi-year simulations for a single crop,
and compares two crops either by static characteristics or by simulated
cumulative yield and cost. Results render as terminal tables or as csv, json,
html, xlsx, png or svg reports.

Run "cropsim tui" for the interactive dashboard.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file (default: "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Simulation service base URL (overrides config)")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "Locale for number formatting, e.g. en, de, fr (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(listCmd(a))
	root.AddCommand(simulateCmd(a))
	root.AddCommand(compareCmd(a))
	root.AddCommand(tuiCmd(a))
	root.AddCommand(configCmd(a))
	root.AddCommand(versionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipConfig] == "true" {
		a.cfg = config.Default()
	} else {
		cfg, err := a.loadConfig()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	logger, err := newLogger(a.cfg.Logging, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger
	a.log.Debug("configuration loaded",
		zap.String("base_url", a.cfg.Service.BaseURL),
		zap.Duration("timeout", a.cfg.Service.Timeout),
		zap.String("locale", a.cfg.Display.Locale))
	return nil
}

// loadConfig reads the explicit --config file, or the default file when it
// exists, then applies flag overrides and validates the result.
func (a *app) loadConfig() (*config.Configuration, error) {
	parser := config.NewConfigParser()
	path := a.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultPath()); err == nil {
			path = config.DefaultPath()
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := parser.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if a.baseURL != "" {
		cfg.Service.BaseURL = a.baseURL
	}
	if a.locale != "" {
		cfg.Display.Locale = a.locale
	}
	if err := parser.ValidateConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	if !lc.JSON {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	level := zapcore.WarnLevel
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return nil, err
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func (a *app) client() (*client.Client, error) {
	cl, err := client.New(a.cfg.Service.BaseURL,
		client.WithTimeout(a.cfg.Service.Timeout),
		client.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	a.log.Debug("service client ready",
		zap.String("base_url", cl.BaseURL()),
		zap.Duration("timeout", a.cfg.Service.Timeout))
	return cl, nil
}

func (a *app) accessor() (*catalog.Accessor, error) {
	cl, err := a.client()
	if err != nil {
		return nil, err
	}
	return catalog.NewAccessor(cl, a.log), nil
}

// render writes report to stdout, or to a timestamped file in outDir.
func (a *app) render(cmd *cobra.Command, report *output.Report, format, outDir string) error {
	report.WithDisplay(a.cfg.Display.Locale, a.cfg.Display.CurrencySymbol)
	f, err := output.ResolveFormatter(format)
	if err != nil {
		return err
	}
	if outDir != "" {
		path, err := output.WriteFormatted(f, report, outDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	}
	switch output.ExtensionFor(f) {
	case "png", "xlsx":
		return fmt.Errorf("%s output is binary; use --out to write it to a file", f.Name())
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
