package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/estatelens/estatelens/internal/backend"
	"github.com/estatelens/estatelens/internal/config"
	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/session"
	"github.com/estatelens/estatelens/internal/theme"
	"github.com/estatelens/estatelens/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	flags := pflag.NewFlagSet("estatelens-tui", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (default is $HOME/.config/estatelens/config.yml)")
	envFile := flags.String("env-file", "", "dotenv file (default is ./.env)")
	showVersion := flags.Bool("version", false, "print version information")
	flags.String("api-base", "", "analytics backend base url")
	flags.String("export-dir", "", "directory for exported tables")
	flags.String("theme", "", "light or dark")
	flags.String("skin", "", "skin name under $HOME/.config/estatelens/skins")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("EstateLens - Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := config.Load(config.Options{ConfigPath: *configPath, EnvFile: *envFile, Flags: flags})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg config.Config) error {
	closeLog := config.ConfigureRuntimeLogger()
	defer closeLog()

	skin, err := theme.Load(cfg.Skin, config.Dir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load skin '%s': %v (using default)\n", cfg.Skin, err)
	}

	client, err := backend.New(cfg.APIBase, backend.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}

	notices := session.NewNoticeLog(0)
	ctrl := session.NewController(client,
		session.WithNotifier(notices),
		session.WithDarkTheme(cfg.Dark()),
	)
	deps := tui.Deps{
		Controller: ctrl,
		Notices:    notices,
		Assistant:  session.NewAssistant(client),
		Skin:       skin,
		ExportDir:  cfg.ExportDir,
		Export:     export.Options{XLSXFormat: cfg.XLSXFormat},
	}

	app := tui.NewApp(tui.NewDashboardModel(deps), tui.NewAssistantPage(deps))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
