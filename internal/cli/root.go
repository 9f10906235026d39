// Package cli provides the estatelens command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/estatelens/estatelens/internal/backend"
	"github.com/estatelens/estatelens/internal/config"
	"github.com/estatelens/estatelens/internal/session"
)

// Version information (set at build time).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile, envFile string

	rootCmd := &cobra.Command{
		Use:   "estatelens",
		Short: "EstateLens - real-estate analytics from the terminal",
		Long: `EstateLens uploads price spreadsheets to the analytics backend, asks it
free-text questions and shows the answer as a summary, a chart and a table.

Run estatelens-tui for the interactive dashboard.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}
			cfg, err := config.Load(config.Options{
				ConfigPath: cfgFile,
				EnvFile:    envFile,
				Flags:      cmd.Flags(),
			})
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/estatelens/config.yml)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file (default is ./.env)")
	pf.String("api-base", "", "analytics backend base url")
	pf.Duration("request-timeout", 0, "per-request timeout")
	pf.String("export-dir", "", "directory for exported tables")
	pf.String("xlsx-format", "", "spreadsheet export: workbook or markup")

	rootCmd.AddCommand(newAreasCommand())
	rootCmd.AddCommand(newUploadCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getConfig retrieves the config stored by PersistentPreRunE.
func getConfig(ctx context.Context) config.Config {
	if c, ok := ctx.Value(configKey{}).(config.Config); ok {
		return c
	}
	return config.Config{}
}

// stderrNotifier prints notices on w.
func stderrNotifier(w io.Writer) session.Notifier {
	return session.NotifierFunc(func(n session.Notice) {
		fmt.Fprintln(w, n.Text)
	})
}

func newClient(cfg config.Config) (*backend.Client, error) {
	return backend.New(cfg.APIBase, backend.WithTimeout(cfg.RequestTimeout))
}

// newController returns a controller whose notices go to the command's
// stderr unless opts install another notifier.
func newController(cmd *cobra.Command, api session.Backend, opts ...session.Option) *session.Controller {
	opts = append([]session.Option{session.WithNotifier(stderrNotifier(cmd.ErrOrStderr()))}, opts...)
	return session.NewController(api, opts...)
}

// controllerFor builds the backend client and controller from cfg.
func controllerFor(cmd *cobra.Command, cfg config.Config) (*session.Controller, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return newController(cmd, client), nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "EstateLens %s\n", Version)
			fmt.Fprintf(out, "  Commit: %s\n", Commit)
			fmt.Fprintf(out, "  Built:  %s\n", BuildTime)
		},
	}
}
