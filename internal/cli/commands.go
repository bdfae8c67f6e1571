package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/dyike/psxlens/config"
	"github.com/dyike/psxlens/internal/debug"
	"github.com/dyike/psxlens/internal/display"
	"github.com/dyike/psxlens/internal/logger"
	"github.com/dyike/psxlens/internal/service"
	"github.com/dyike/psxlens/internal/utils"
)

var version = "v0.3.0"

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	flags rootFlags

	cfg    *config.Config
	logger *log.Logger
	svc    *service.MarketService

	newService func(ctx context.Context, cfg *config.Config, logger *log.Logger) *service.MarketService
}

type rootFlags struct {
	envFile  string
	url      string
	renderer string
	headful  bool
	debug    bool
	output   string
	top      int
	explain  bool
	question string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{newService: service.NewFromConfig})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "psxlens",
		Short: "psxlens - PSX market summary analytics",
		Long: `psxlens scrapes the Pakistan Stock Exchange market summary, normalizes its
tables and answers questions about gainers, losers, volume and individual symbols.
Numbers are always computed locally; a language model can optionally explain them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "Env file to load before reading the environment")
	pf.StringVar(&a.flags.url, "url", "", "Market summary URL (overrides PSX_MARKET_URL)")
	pf.StringVar(&a.flags.renderer, "renderer", "", "Page renderer: browser or http")
	pf.BoolVar(&a.flags.headful, "headful", false, "Show the browser window while rendering")
	pf.BoolVar(&a.flags.debug, "debug", false, "Enable debug logging")
	pf.StringVarP(&a.flags.output, "output", "o", display.FormatTable, "Output format: table, json or yaml")
	pf.IntVarP(&a.flags.top, "top", "n", 0, "Number of records for ranked views, at least 1 (overrides PSX_TOP_N)")
	pf.BoolVar(&a.flags.explain, "explain", false, "Ask the language model to explain the computed numbers")
	pf.StringVarP(&a.flags.question, "question", "q", "", "Question for the explanation (implies --explain)")

	rootCmd.AddCommand(
		newRankCmd(a, "overview", "Market breadth, sector activity and most traded symbols", service.IntentOverview),
		newRankCmd(a, "gainers", "Top gainers by change percent", service.IntentGainers),
		newRankCmd(a, "losers", "Top losers by change percent", service.IntentLosers),
		newRankCmd(a, "volume", "Most traded symbols by volume", service.IntentVolume),
		newSymbolCmd(a),
		newCompareCmd(a),
		newExportCmd(a),
		newInteractiveCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

// setup loads config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if a.flags.url != "" {
		cfg.MarketURL = a.flags.url
	}
	if a.flags.renderer != "" {
		cfg.Renderer = a.flags.renderer
	}
	if flags.Changed("headful") {
		cfg.Headless = !a.flags.headful
	}
	if flags.Changed("debug") {
		cfg.Debug = a.flags.debug
	}
	if flags.Changed("top") {
		if a.flags.top < 1 {
			return fmt.Errorf("--top must be at least 1, got %d", a.flags.top)
		}
		cfg.TopN = a.flags.top
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.New(cfg.LogLevel, cfg.Debug)

	if err := debug.NewEinoDebugger(cfg, a.logger).Initialize(cmd.Context()); err != nil {
		a.logger.Warn().Err(err).Msg("eino debug disabled")
	}
	return nil
}

func (a *app) service(ctx context.Context) *service.MarketService {
	if a.svc == nil {
		a.svc = a.newService(ctx, a.cfg, a.logger)
	}
	return a.svc
}

func (a *app) printer(w io.Writer) (*display.Printer, error) {
	return display.NewPrinter(w, a.flags.output)
}

func (a *app) query(intent service.Intent, symbols []string) service.Query {
	return service.Query{
		Intent:   intent,
		N:        a.cfg.TopN,
		Symbols:  symbols,
		Explain:  a.flags.explain,
		Question: a.flags.question,
	}
}

func (a *app) runQuery(cmd *cobra.Command, q service.Query) error {
	printer, err := a.printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	resp, err := a.service(cmd.Context()).Run(cmd.Context(), q)
	if err != nil {
		return err
	}
	return printer.Print(resp)
}

func newRankCmd(a *app, use, short string, intent service.Intent) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, a.query(intent, nil))
		},
	}
}

func newSymbolCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "symbol SYMBOL",
		Short:   "Show the current row of one symbol",
		Example: "  psxlens symbol HBL --explain",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, a.query(service.IntentSymbol, args))
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "compare SYMBOL...",
		Short:   "Compare traded volume of several symbols",
		Example: "  psxlens compare HBL UBL MCB",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, a.query(service.IntentCompare, args))
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the normalized snapshot as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.service(cmd.Context()).Snapshot(cmd.Context(), false)
			if err != nil {
				return err
			}
			if toStdout {
				return utils.WriteRecordsCSV(cmd.OutOrStdout(), snap.Records)
			}

			if err := a.cfg.EnsureDirectories(); err != nil {
				return err
			}
			path, err := utils.NewCSVManager(a.cfg.ResultsDir).WriteSnapshotCSV(snap)
			if err != nil {
				return err
			}
			display.Success(cmd.OutOrStdout(), fmt.Sprintf("exported %d records to %s", snap.Len(), path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write CSV to stdout instead of the results directory")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "psxlens %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout(), a.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), a.cfg)
		},
	})

	return configCmd
}

func showConfig(w io.Writer, cfg *config.Config) error {
	rows := [][2]string{
		{"Market URL", cfg.MarketURL},
		{"Renderer", cfg.Renderer},
		{"Headless", fmt.Sprint(cfg.Headless)},
		{"Wait Selector", cfg.WaitSelector},
		{"Settle Delay", cfg.SettleDelay.String()},
		{"Render Timeout", cfg.RenderTimeout.String()},
		{"Snapshot TTL", cfg.SnapshotTTL.String()},
		{"Top N", fmt.Sprint(cfg.TopN)},
		{"Results Directory", cfg.ResultsDir},
		{"LLM Provider", cfg.LLMProvider},
		{"LLM Model", cfg.Model()},
		{"LLM Timeout", cfg.LLMTimeout.String()},
		{"Explanations", enabledText(cfg.ExplanationEnabled())},
		{"Eino Debug", fmt.Sprint(cfg.EinoDebugEnabled)},
		{"Log Level", cfg.LogLevel},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", r[0]+":", r[1]); err != nil {
			return err
		}
	}
	return nil
}

func enabledText(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled (no API key)"
}

// validateConfig reports problems that would stop or degrade a run.
func validateConfig(w io.Writer, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var warnings []string
	if !cfg.ExplanationEnabled() {
		warnings = append(warnings, fmt.Sprintf("no API key for %s, --explain will only print a warning", cfg.LLMProvider))
	}
	if cfg.Renderer == config.RendererHTTP {
		warnings = append(warnings, "http renderer does not run JavaScript, tables built client side will be missing")
	}
	if !strings.HasPrefix(cfg.MarketURL, "https://") {
		warnings = append(warnings, "market URL is not https")
	}

	if len(warnings) > 0 {
		fmt.Fprintln(w, display.RenderWarnings(warnings))
	}
	display.Success(w, "configuration is valid")
	return nil
}
