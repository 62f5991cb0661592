package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidewater-labs/oceanstat/internal/config"
	"github.com/tidewater-labs/oceanstat/internal/diag"
	"github.com/tidewater-labs/oceanstat/internal/moc"
	"github.com/tidewater-labs/oceanstat/internal/regstats"
	"github.com/tidewater-labs/oceanstat/internal/report/plotpage"
	"github.com/tidewater-labs/oceanstat/internal/store"
)

const (
	renderDirPerm     = 0o750
	renderCmdUse      = "render"
	renderCmdShort    = "Render stored diagnostics as multi-page HTML"
	renderOutputFlag  = "output"
	renderOutputShort = "o"
	renderOutputUsage = "output directory for HTML files"
)

// ErrEmptyStore is returned when the store manifest lists no diagnostics.
var ErrEmptyStore = errors.New("no diagnostics found in store")

// ErrUnknownDiagnostic is returned when the manifest names a diagnostic
// without a section renderer.
var ErrUnknownDiagnostic = errors.New("no section renderer for diagnostic")

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	var configPath, storeDir, outputDir string

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if storeDir == "" {
				storeDir = cfg.Output.StoreDir
			}

			if outputDir == "" {
				outputDir = cfg.Output.HTMLDir
			}

			theme, err := cfg.PageTheme()
			if err != nil {
				return err
			}

			return runRender(storeDir, outputDir, cfg.Report.Title, theme)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default .oceanstat.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "directory holding stored diagnostic results")
	cmd.Flags().StringVarP(&outputDir, renderOutputFlag, renderOutputShort, "", renderOutputUsage)

	return cmd
}

func runRender(storeDir, outputDir, title string, theme plotpage.Theme) error {
	mkErr := os.MkdirAll(outputDir, renderDirPerm)
	if mkErr != nil {
		return fmt.Errorf("create output dir: %w", mkErr)
	}

	st := store.New(storeDir)

	manifest, loadErr := st.LoadManifest()
	if loadErr != nil {
		return fmt.Errorf("load manifest: %w", loadErr)
	}

	if len(manifest.Diagnostics) == 0 {
		return ErrEmptyStore
	}

	renderer := &plotpage.MultiPageRenderer{
		OutputDir: outputDir,
		Title:     fmt.Sprintf("%s: %s", title, manifest.Case),
		Theme:     theme,
	}

	pages := make([]plotpage.PageMeta, 0, len(manifest.Diagnostics))

	for _, id := range manifest.Diagnostics {
		meta, renderErr := renderOneDiagnostic(st, renderer, id, theme)
		if renderErr != nil {
			slog.Default().Warn("skipping diagnostic", "id", id, "error", renderErr)

			continue
		}

		pages = append(pages, meta)
	}

	indexErr := renderer.RenderIndex(pages)
	if indexErr != nil {
		return fmt.Errorf("render index: %w", indexErr)
	}

	return nil
}

func renderOneDiagnostic(
	st *store.Store,
	renderer *plotpage.MultiPageRenderer,
	id string,
	theme plotpage.Theme,
) (plotpage.PageMeta, error) {
	sections, meta, genErr := diagnosticSections(st, id, theme)
	if genErr != nil {
		return plotpage.PageMeta{}, genErr
	}

	pageErr := renderer.RenderDiagnosticPage(id, meta.Title, sections)
	if pageErr != nil {
		return plotpage.PageMeta{}, fmt.Errorf("render page %s: %w", id, pageErr)
	}

	return meta, nil
}

// diagnosticSections loads the stored results of one diagnostic and turns
// them into report sections.
func diagnosticSections(st *store.Store, id string, theme plotpage.Theme) ([]plotpage.Section, plotpage.PageMeta, error) {
	switch id {
	case moc.DiagID:
		a, err := diag.LoadMOC(st)
		if err != nil {
			return nil, plotpage.PageMeta{}, fmt.Errorf("load %s: %w", id, err)
		}

		meta := plotpage.PageMeta{
			ID:          id,
			Title:       "Meridional Overturning",
			Description: "Streamfunction profiles and annual AMOC strength series.",
		}

		return moc.Sections(a, theme), meta, nil
	case diag.DiagSurface:
		vars, err := diag.LoadStats(st, id)
		if err != nil {
			return nil, plotpage.PageMeta{}, fmt.Errorf("load %s: %w", id, err)
		}

		meta := plotpage.PageMeta{
			ID:          id,
			Title:       "Surface Fields",
			Description: "Regional statistics of the surface state variables.",
		}

		return regstats.Sections(vars, theme), meta, nil
	case diag.DiagForcing:
		vars, err := diag.LoadStats(st, id)
		if err != nil {
			return nil, plotpage.PageMeta{}, fmt.Errorf("load %s: %w", id, err)
		}

		meta := plotpage.PageMeta{
			ID:          id,
			Title:       "Surface Forcing",
			Description: "Regional statistics of the boundary forcing variables.",
		}

		return regstats.Sections(vars, theme), meta, nil
	default:
		return nil, plotpage.PageMeta{}, fmt.Errorf("%w: %s", ErrUnknownDiagnostic, id)
	}
}
