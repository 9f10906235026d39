package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estatelens/estatelens/internal/chart"
	"github.com/estatelens/estatelens/internal/config"
	"github.com/estatelens/estatelens/internal/dataset"
	"github.com/estatelens/estatelens/internal/duckdb"
	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/model"
	"github.com/estatelens/estatelens/internal/render"
)

func newAreasCommand() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "areas",
		Short: "List the areas known to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := controllerFor(cmd, getConfig(cmd.Context()))
			if err != nil {
				return err
			}
			if err := ctrl.LoadCategories(cmd.Context()); err != nil {
				return err
			}
			areas := ctrl.Snapshot().Categories
			out := cmd.OutOrStdout()
			if preview {
				if len(areas) > 0 {
					fmt.Fprintln(out, render.AreasPreview(areas))
				}
				return nil
			}
			for _, a := range areas {
				fmt.Fprintln(out, a)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "print the short preview line instead of the full list")
	return cmd
}

func newUploadCommand() *cobra.Command {
	var inspect bool

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an .xlsx or .xls dataset",
		Example: `  estatelens upload prices.xlsx
  estatelens upload --inspect prices.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			f := &model.DatasetFile{Name: filepath.Base(path), Data: data}

			if inspect && strings.EqualFold(filepath.Ext(path), ".xlsx") {
				p, err := dataset.Inspect(data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Sheet %q: %d rows, columns %s\n",
					p.Sheet, p.Rows, strings.Join(p.Headers, ", "))
			}

			ctrl, err := controllerFor(cmd, getConfig(cmd.Context()))
			if err != nil {
				return err
			}
			if err := ctrl.Upload(cmd.Context(), f); err != nil {
				return err
			}
			if areas := ctrl.Snapshot().Categories; len(areas) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), render.AreasPreview(areas))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&inspect, "inspect", false, "print the first sheet's shape before uploading")
	return cmd
}

// queryOptions holds options for the query command.
type queryOptions struct {
	Output   string
	Export   string
	ChartPNG string
	SQL      string
	Width    int
	Height   int
}

func newQueryCommand() *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query TEXT...",
		Short: "Ask the backend a free-text question",
		Example: `  estatelens query "price trend in Wakad since 2020"
  estatelens query "compare Baner and Wakad" --output json
  estatelens query "top areas by growth" --export ./out --chart-png trend.png
  estatelens query "prices by area" --sql "SELECT * FROM result ORDER BY price DESC LIMIT 5"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", render.FormatTable, "output format: table, markdown, json")
	cmd.Flags().StringVar(&opts.Export, "export", "", "write table_data.csv and table_data.xlsx into this directory")
	cmd.Flags().StringVar(&opts.ChartPNG, "chart-png", "", "write the chart as a PNG image")
	cmd.Flags().StringVar(&opts.SQL, "sql", "", "run a read-only SQL query over the result table")
	cmd.Flags().IntVar(&opts.Width, "chart-width", 960, "PNG width in pixels")
	cmd.Flags().IntVar(&opts.Height, "chart-height", 480, "PNG height in pixels")
	return cmd
}

func runQuery(cmd *cobra.Command, text string, opts *queryOptions) error {
	cfg := getConfig(cmd.Context())
	ctrl, err := controllerFor(cmd, cfg)
	if err != nil {
		return err
	}
	res, err := ctrl.Query(cmd.Context(), text)
	if err != nil {
		return err
	}
	sections := render.Build(&res)

	if opts.SQL != "" {
		rows, err := queryResultTable(cmd, cfg, res.Table, opts.SQL)
		if err != nil {
			return err
		}
		sections = render.Sections{Table: rows, Headers: rows.Headers()}
	}
	if err := render.WriteText(cmd.OutOrStdout(), sections, opts.Output); err != nil {
		return err
	}

	if opts.Export != "" {
		em := &export.DirEmitter{Dir: opts.Export}
		if err := export.Export(cmd.Context(), res.Table, em, export.Options{XLSXFormat: cfg.XLSXFormat}); err != nil {
			return err
		}
		for _, p := range em.Written {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", p)
		}
	}

	if opts.ChartPNG != "" {
		spec, ok := chart.Synthesize(res.Chart)
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "no chart in result")
			return nil
		}
		img, err := chart.RenderPNG(spec, opts.Width, opts.Height)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.ChartPNG, img, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.ChartPNG, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", opts.ChartPNG)
	}
	return nil
}

// queryResultTable loads rows into a scratch workspace and runs query.
func queryResultTable(cmd *cobra.Command, cfg config.Config, rows model.RowSet, query string) (model.RowSet, error) {
	store, err := duckdb.NewStore("", cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	if cfg.WorkspaceMaxRows > 0 {
		store.MaxRows = cfg.WorkspaceMaxRows
	}

	if err := store.LoadResult(cmd.Context(), rows); err != nil {
		return nil, err
	}
	return store.ExecuteQuery(cmd.Context(), query)
}
