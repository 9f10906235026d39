package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/estatelens/estatelens/internal/config"
	"github.com/estatelens/estatelens/internal/duckdb"
	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/httpserver"
	"github.com/estatelens/estatelens/internal/model"
	"github.com/estatelens/estatelens/internal/session"
)

func newServeCommand() *cobra.Command {
	var logToFile bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over a local HTTP API",
		Long: `Serve runs one shared session behind a local HTTP API: upload, query,
chart and table downloads, the assistant and read-only SQL over the latest
result table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if logToFile {
				defer config.ConfigureRuntimeLogger()()
			}
			return runServe(cmd, getConfig(cmd.Context()))
		},
	}

	cmd.Flags().String("listen-addr", "", "address for the HTTP API (default "+model.DefaultListenAddr+")")
	cmd.Flags().String("workspace-path", "", "DuckDB file for the result workspace (empty for in-memory)")
	cmd.Flags().Int("workspace-max-rows", 0, "row cap for workspace SQL queries")
	cmd.Flags().BoolVar(&logToFile, "log-file", false, "log to ~/.local/state/estatelens/estatelens.log")
	return cmd
}

func runServe(cmd *cobra.Command, cfg config.Config) error {
	store, err := duckdb.NewStore(cfg.WorkspacePath, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	defer store.Close()
	store.MaxRows = cfg.WorkspaceMaxRows

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	notices := session.NewNoticeLog(0)
	ctrl := newController(cmd, client,
		session.WithNotifier(session.NotifierFunc(func(n session.Notice) {
			notices.Notify(n)
			log.Printf("notice: [%s] %s", n.Level, n.Text)
		})),
		session.WithDarkTheme(cfg.Dark()),
		session.WithResultHook(func(res model.QueryResult) {
			if err := store.LoadResult(context.Background(), res.Table); err != nil {
				log.Printf("serve: load result table: %v", err)
			}
		}),
	)

	srv := httpserver.NewServer(cfg.ListenAddr, httpserver.Deps{
		Controller: ctrl,
		Notices:    notices,
		Assistant:  session.NewAssistant(client),
		Workspace:  store,
		Export:     export.Options{XLSXFormat: cfg.XLSXFormat},
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start http api: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "EstateLens API listening on http://%s/api (backend %s)\n", srv.Addr(), cfg.APIBase)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lctx, cancel := context.WithTimeout(gctx, cfg.RequestTimeout)
		defer cancel()
		// The backend may come up later; the areas endpoint can refresh.
		if err := ctrl.LoadCategories(lctx); err != nil {
			log.Printf("serve: initial areas: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("serve: errgroup exited with error: %v", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Printf("serve: shutdown timed out")
	}
	return nil
}
