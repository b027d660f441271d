package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the testscope engine.

Endpoints:
  GET  /health          Health check
  POST /api/classify    Categorize a change from metrics or a change
  POST /api/impact      Select test cases from a ticket, change and inventory
  POST /api/score       Score one test case against a change
  POST /api/regression  Rank a whole inventory against a change
  POST /api/analyze     Fetch ticket, pull request and suite, then select (needs remote config)
  GET  /api/ws          WebSocket for interactive triage sessions`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "address to listen on (default server.addr)")
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		e.cfg.Server.Addr = addr
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		e.cfg.Server.Port = port
	}

	opts := []api.Option{
		api.WithTable(e.table),
		api.WithVocabulary(e.vocab),
		api.WithOptions(e.options(false)),
		api.WithLogger(e.log),
	}
	svc, release, err := e.service(false)
	switch {
	case err == nil:
		defer release()
		opts = append(opts, api.WithAnalyzer(svc))
	case errors.Is(err, errRemoteNotConfigured):
		e.log.Info().Msg("remote services not configured; /api/analyze disabled")
	default:
		return err
	}

	srv := api.New(e.cfg.Server.Address(), opts...)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		e.log.Info().Msg("server stopped")
		return nil
	}
}
