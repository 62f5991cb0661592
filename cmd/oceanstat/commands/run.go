// Package commands implements CLI command handlers for oceanstat.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tidewater-labs/oceanstat/internal/config"
	"github.com/tidewater-labs/oceanstat/internal/dataset"
	"github.com/tidewater-labs/oceanstat/internal/diag"
	"github.com/tidewater-labs/oceanstat/internal/moc"
	"github.com/tidewater-labs/oceanstat/internal/store"
)

type mocRunner func(ctx context.Context, opts diag.Options) (*diag.MOCResult, error)

type statsRunner func(ctx context.Context, opts diag.Options, diagID string, varNames []string) (*diag.StatsResult, error)

// ErrNoDiagnostics is returned when the configuration selects nothing to run.
var ErrNoDiagnostics = errors.New(
	"no diagnostics selected. Enable diagnostics.moc or list surface_vars/forcing_vars",
)

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	configPath   string
	caseName     string
	runDir       string
	ncDir        string
	storeDir     string
	startYear    int
	endYear      int
	workers      int
	memoryBudget string
	silent       bool

	mocExec   mocRunner
	statsExec statsRunner
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return newRunCommandWithDeps(diag.RunMOC, diag.RunStats)
}

func newRunCommandWithDeps(mocExec mocRunner, statsExec statsRunner) *cobra.Command {
	rc := &RunCommand{mocExec: mocExec, statsExec: statsExec}

	cmd := &cobra.Command{
		Use:   "run [run-dir]",
		Short: "Compute diagnostics for one model case",
		Long:  "Compute the configured diagnostics from MOM6 history output, write NetCDF products and persist results for rendering.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "config file (default .oceanstat.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&rc.caseName, "case", "", "model case name")
	cmd.Flags().StringVar(&rc.runDir, "run-dir", "", "directory holding the history and static files")
	cmd.Flags().IntVar(&rc.startYear, "start-year", 0, "first year to analyze (0 = unbounded)")
	cmd.Flags().IntVar(&rc.endYear, "end-year", 0, "last year to analyze (0 = unbounded)")
	cmd.Flags().StringVar(&rc.ncDir, "nc-dir", "", "output directory for NetCDF products")
	cmd.Flags().StringVar(&rc.storeDir, "store-dir", "", "directory for stored diagnostic results")
	cmd.Flags().IntVar(&rc.workers, "workers", 0, "parallel file readers (0 = size from memory budget)")
	cmd.Flags().StringVar(&rc.memoryBudget, "memory-budget", "", "memory budget for reader sizing (e.g. '8GiB')")
	cmd.Flags().BoolVar(&rc.silent, "silent", false, "disable progress output")

	return cmd
}

// diagSummary is one row of the terminal summary table.
type diagSummary struct {
	id      string
	detail  string
	files   int
	elapsed time.Duration
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyOverrides(cmd, cfg, args)

	err = cfg.Validate()
	if err != nil {
		return err
	}

	if cfg.Case.Name == "" {
		return diag.ErrNoCase
	}

	if cfg.Case.RunDir == "" {
		return diag.ErrNoRunDir
	}

	if !cfg.Diags.MOC && len(cfg.Diags.SurfaceVars) == 0 && len(cfg.Diags.ForcingVars) == 0 {
		return ErrNoDiagnostics
	}

	progressWriter := cmd.ErrOrStderr()

	logger, err := buildLogger(cfg, progressWriter)
	if err != nil {
		return err
	}

	workers, budget, err := resolveWorkers(cfg)
	if err != nil {
		return err
	}

	opts := diag.Options{
		CaseName: cfg.Case.Name,
		RunDir:   cfg.Case.RunDir,
		OutDir:   cfg.Output.NCDir,
		Store:    store.New(cfg.Output.StoreDir),
		Years:    cfg.YearRange(),
		Workers:  workers,
		Log:      logger,
	}

	rc.progressf(progressWriter, "starting run case=%s run_dir=%s workers=%d budget=%s",
		opts.CaseName, opts.RunDir, workers, budgetLabel(budget))

	summaries, err := rc.runDiagnostics(cmd.Context(), cfg, opts, progressWriter)
	if err != nil {
		return err
	}

	ran := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ran = append(ran, s.id)
	}

	err = opts.Store.SaveManifest(&store.Manifest{
		Case:        cfg.Case.Name,
		CreatedAt:   time.Now().UTC(),
		Diagnostics: ran,
	})
	if err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	rc.progressf(progressWriter, "run completed")

	if !rc.silent {
		printSummary(cmd.OutOrStdout(), cfg.Case.Name, summaries)
	}

	return nil
}

// applyOverrides lets flags win over config file values. Only flags the
// user changed are applied, so file settings survive otherwise.
func (rc *RunCommand) applyOverrides(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Case.RunDir = args[0]
	}

	flags := cmd.Flags()

	if flags.Changed("case") {
		cfg.Case.Name = rc.caseName
	}

	if flags.Changed("run-dir") {
		cfg.Case.RunDir = rc.runDir
	}

	if flags.Changed("start-year") {
		cfg.Case.StartYear = rc.startYear
	}

	if flags.Changed("end-year") {
		cfg.Case.EndYear = rc.endYear
	}

	if flags.Changed("nc-dir") {
		cfg.Output.NCDir = rc.ncDir
	}

	if flags.Changed("store-dir") {
		cfg.Output.StoreDir = rc.storeDir
	}

	if flags.Changed("workers") {
		cfg.Runtime.Workers = rc.workers
	}

	if flags.Changed("memory-budget") {
		cfg.Runtime.MemoryBudget = rc.memoryBudget
	}
}

func (rc *RunCommand) runDiagnostics(
	ctx context.Context,
	cfg *config.Config,
	opts diag.Options,
	progressWriter io.Writer,
) ([]diagSummary, error) {
	var summaries []diagSummary

	if cfg.Diags.MOC {
		startedAt := time.Now()

		rc.progressf(progressWriter, "overturning diagnostic started")

		res, err := rc.mocExec(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", moc.DiagID, err)
		}

		summaries = append(summaries, diagSummary{
			id:      moc.DiagID,
			detail:  fmt.Sprintf("%d years", len(res.Analysis.Years)),
			files:   len(res.Files),
			elapsed: time.Since(startedAt),
		})

		rc.progressf(progressWriter, "overturning diagnostic finished in %s", time.Since(startedAt).Round(time.Millisecond))
	}

	statsSets := []struct {
		id   string
		vars []string
	}{
		{id: diag.DiagSurface, vars: cfg.Diags.SurfaceVars},
		{id: diag.DiagForcing, vars: cfg.Diags.ForcingVars},
	}

	for _, set := range statsSets {
		if len(set.vars) == 0 {
			continue
		}

		startedAt := time.Now()

		rc.progressf(progressWriter, "%s statistics started (%d variables)", set.id, len(set.vars))

		res, err := rc.statsExec(ctx, opts, set.id, set.vars)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", set.id, err)
		}

		summaries = append(summaries, diagSummary{
			id:      set.id,
			detail:  statsDetail(res),
			files:   len(res.Files),
			elapsed: time.Since(startedAt),
		})

		rc.progressf(progressWriter, "%s statistics finished in %s", set.id, time.Since(startedAt).Round(time.Millisecond))
	}

	return summaries, nil
}

func statsDetail(res *diag.StatsResult) string {
	if len(res.Skipped) == 0 {
		return fmt.Sprintf("%d variables", len(res.Vars))
	}

	return fmt.Sprintf("%d variables (%d skipped)", len(res.Vars), len(res.Skipped))
}

func buildLogger(cfg *config.Config, writer io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})), nil
}

// resolveWorkers sizes the reader pool from the memory budget when the
// config does not pin a count.
func resolveWorkers(cfg *config.Config) (int, int64, error) {
	budget, err := cfg.MemoryBudgetBytes()
	if err != nil {
		return 0, 0, err
	}

	if cfg.Runtime.Workers > 0 {
		return cfg.Runtime.Workers, budget, nil
	}

	planner := &dataset.Planner{MemoryBudget: budget}

	return planner.Workers(), budget, nil
}

func budgetLabel(budget int64) string {
	if budget <= 0 {
		return "unlimited"
	}

	return humanize.IBytes(uint64(budget))
}

func printSummary(out io.Writer, caseName string, summaries []diagSummary) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Diagnostic", "Detail", "Products", "Elapsed"})

	for _, s := range summaries {
		tbl.AppendRow(table.Row{s.id, s.detail, s.files, s.elapsed.Round(time.Millisecond)})
	}

	fmt.Fprintln(out, tbl.Render())
	color.New(color.FgGreen).Fprintf(out, "Diagnostics of %s complete\n", caseName)
}

func (rc *RunCommand) progressf(writer io.Writer, format string, args ...any) {
	if rc.silent {
		return
	}

	_, _ = fmt.Fprintf(writer, "progress: "+format+"\n", args...)
}
