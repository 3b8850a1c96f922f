package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cropsim/crop-dashboard/internal/analytics"
	"github.com/cropsim/crop-dashboard/internal/config"
	"github.com/cropsim/crop-dashboard/internal/domain"
	"github.com/cropsim/crop-dashboard/internal/output"
	"github.com/cropsim/crop-dashboard/internal/series"
	"github.com/cropsim/crop-dashboard/internal/session"
	"github.com/cropsim/crop-dashboard/internal/tui"
)

// reportFlags are shared by every command that renders a report.
type reportFlags struct {
	format string
	outDir string
}

func (rf *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rf.format, "format", "f", "console",
		"Output format: "+strings.Join(output.AvailableFormatterNames(), ", "))
	cmd.Flags().StringVarP(&rf.outDir, "out", "o", "", "Write the report to a timestamped file in this directory")
}

// horizonFlags override the configured years and water defaults.
type horizonFlags struct {
	years int
	water float64
}

func (hf *horizonFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&hf.years, "years", "y", 0, fmt.Sprintf("Simulation horizon in years, 1-%d (default from config)", config.MaxYears))
	cmd.Flags().Float64VarP(&hf.water, "water", "w", 0, "Water availability in litres per year (default from config)")
}

func (hf *horizonFlags) apply(cmd *cobra.Command, years *int, water *float64) {
	if cmd.Flags().Changed("years") {
		*years = hf.years
	}
	if cmd.Flags().Changed("water") {
		*water = hf.water
	}
}

func listCmd(a *app) *cobra.Command {
	var rf reportFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"crops"},
		Short:   "List the crop catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.accessor()
			if err != nil {
				return err
			}
			s := session.NewCatalogSession(acc, a.log)
			if err := s.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load crops: %w", err)
			}
			report, err := s.Report()
			if err != nil {
				return err
			}
			return a.render(cmd, report, rf.format, rf.outDir)
		},
	}
	rf.register(cmd)
	return cmd
}

func simulateCmd(a *app) *cobra.Command {
	var (
		rf     reportFlags
		hf     horizonFlags
		metric string
	)
	cmd := &cobra.Command{
		Use:   "simulate [crop-id]",
		Short: "Simulate one crop over several years",
		Example: `  cropsim simulate wheat
  cropsim simulate rice --years 10 --water 40000 --metric cost --format html --out reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			s := session.NewSimulateSession(cl, a.cfg.Defaults, a.log)
			s.CropID = args[0]
			hf.apply(cmd, &s.Years, &s.WaterAvailability)
			if metric != "" {
				if s.Metric, err = series.ParseMetric(metric); err != nil {
					return err
				}
			}
			if err := s.Submit(cmd.Context()); err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}
			report, err := s.Report()
			if err != nil {
				return err
			}
			return a.render(cmd, report, rf.format, rf.outDir)
		},
	}
	rf.register(cmd)
	hf.register(cmd)
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "Charted metric: yield, cost or efficiency (default from config)")
	return cmd
}

func compareCmd(a *app) *cobra.Command {
	var (
		rf     reportFlags
		hf     horizonFlags
		option string
		chart  string
		local  bool
	)
	cmd := &cobra.Command{
		Use:   "compare [crop1-id] [crop2-id]",
		Short: "Compare two crops",
		Long: `Compare two crops.

The characteristics option compares static catalog attributes and the
crop_1/crop_2 ratio of each. The simulate option compares cumulative yield
and cost over the simulation horizon and reports where the two curves cross.

With --local the characteristics comparison is computed from the catalog
instead of by the service.`,
		Example: `  cropsim compare wheat rice
  cropsim compare wheat rice --option simulate --chart cost --years 20
  cropsim compare wheat rice --local --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			s := session.NewCompareSession(cl, a.cfg.Defaults, a.log)
			s.Crop1ID, s.Crop2ID = args[0], args[1]
			hf.apply(cmd, &s.Years, &s.WaterAvailability)
			if option != "" {
				o, err := domain.ParseOption(option)
				if err != nil {
					return err
				}
				s.SetOption(o)
			}
			if chart != "" {
				if s.Chart, err = analytics.ParseChartType(chart); err != nil {
					return err
				}
			}

			if local {
				acc, err := a.accessor()
				if err != nil {
					return err
				}
				err = s.SubmitLocal(cmd.Context(), acc)
				if err != nil {
					return fmt.Errorf("comparison failed: %w", err)
				}
			} else if err := s.Submit(cmd.Context()); err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}

			report, err := s.Report()
			if err != nil {
				return err
			}
			return a.render(cmd, report, rf.format, rf.outDir)
		},
	}
	rf.register(cmd)
	hf.register(cmd)
	cmd.Flags().StringVar(&option, "option", "", "Comparison mode: characteristics or simulate (default from config)")
	cmd.Flags().StringVar(&chart, "chart", "", "Charted series in simulate mode: yield or cost (default from config)")
	cmd.Flags().BoolVar(&local, "local", false, "Compute the characteristics comparison locally from the catalog")
	return cmd
}

func tuiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.accessor()
			if err != nil {
				return err
			}
			cl, err := a.client()
			if err != nil {
				return err
			}
			m := tui.New(cmd.Context(), tui.Sessions{
				Catalog:  session.NewCatalogSession(acc, a.log),
				Simulate: session.NewSimulateSession(cl, a.cfg.Defaults, a.log),
				Compare:  session.NewCompareSession(cl, a.cfg.Defaults, a.log),
			}, a.cfg.Display, a.log)
			return tui.Run(cmd.Context(), m)
		},
	}
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write the default configuration",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if a.configPath != "" {
				path = a.configPath
			}
			if len(args) == 1 {
				path = args[0]
			}
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.NewConfigParser().SaveConfiguration(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "service.base_url:            %s\n", c.Service.BaseURL)
			fmt.Fprintf(out, "service.timeout:             %s\n", c.Service.Timeout)
			fmt.Fprintf(out, "display.locale:              %s\n", c.Display.Locale)
			fmt.Fprintf(out, "display.currency_symbol:     %s\n", c.Display.CurrencySymbol)
			fmt.Fprintf(out, "defaults.years:              %d\n", c.Defaults.Years)
			fmt.Fprintf(out, "defaults.water_availability: %g\n", c.Defaults.WaterAvailability)
			fmt.Fprintf(out, "defaults.metric:             %s\n", c.Defaults.Metric)
			fmt.Fprintf(out, "defaults.chart:              %s\n", c.Defaults.Chart)
			fmt.Fprintf(out, "defaults.option:             %s\n", c.Defaults.Option)
			fmt.Fprintf(out, "logging.level:               %s\n", c.Logging.Level)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cropsim %s\n", version)
		},
	}
}
