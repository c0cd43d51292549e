package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/duckdb"
)

func newServeCmd(logger func() *zap.Logger) *cobra.Command {
	var cacheDB string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve HGVS computation over HTTP",
		Long: `Serve HGVS computation as a JSON API:

  GET  /api/hgvs/{variant}   one variant, e.g. /api/hgvs/12:25245351:C:A
  POST /api/hgvs             {"variants": ["12:25245351:C:A", ...]}
  GET  /health`,
		Example: `  vibe-hgvs serve --addr localhost:8080
  vibe-hgvs serve --cache-db results.duckdb`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			log := logger()
			env, err := loadEnvironment(log)
			if err != nil {
				return err
			}

			ann := annotate.NewAnnotator(env.genes, env.calc)
			ann.SetLogger(log)
			ann.SetNormalize(normalizeEnabled(cmd))
			if cacheDB != "" {
				store, openErr := duckdb.Open(cacheDB)
				if openErr != nil {
					return fmt.Errorf("open result cache: %w", openErr)
				}
				defer func() { err = multierr.Append(err, store.Close()) }()
				ann.SetResultCache(store)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, viper.GetString("server.addr"), newRouter(&server{ann: ann, logger: log}), log)
		},
	}

	f := cmd.Flags()
	f.String("addr", "localhost:8080", "Address to listen on")
	f.StringVar(&cacheDB, "cache-db", "", "DuckDB file caching computed HGVS across requests")
	bindFlags(f, map[string]string{"addr": "server.addr"})
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.SetKeepAlivesEnabled(false)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
