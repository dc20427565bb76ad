package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/presentation/http/handler"
	"github.com/sangkips/billdesk/internal/presentation/http/middleware"
	"github.com/sangkips/billdesk/internal/presentation/http/routes"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Listen port (overrides APP_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewIPRateLimiter(middleware.RateLimiterFromQuota(a.cfg.RateLimit.Requests, a.cfg.RateLimit.Duration))
	defer limiter.Stop()

	router := routes.Setup(&routes.Handlers{
		Bill:     handler.NewBillHandler(a.billing, a.customer),
		Archive:  handler.NewArchiveHandler(a.billing, a.cfg.App.DataDir),
		Product:  handler.NewProductHandler(a.catalog, a.jobs, a.cfg.App.DataDir),
		Customer: handler.NewCustomerHandler(a.customer),
		Printer:  handler.NewPrinterHandler(a.printers),
		Job:      handler.NewJobHandler(a.jobs, a.backup),
	}, &routes.Deps{
		Cfg:         a.cfg,
		Log:         a.log,
		RateLimiter: limiter,
	})

	if !a.cfg.Auth.Enabled() {
		a.log.Warnw("basic auth is disabled, set AUTH_PASSWORD_HASH before listening beyond localhost", "host", a.cfg.App.Host)
	}

	port, _ := cmd.Flags().GetString("port")
	addr := a.cfg.App.Addr(port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Infow("starting server", "addr", addr, "env", a.cfg.App.Env, "printers", a.printers.ListPrinters())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
