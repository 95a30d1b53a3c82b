package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/internal/mockapi"
)

// NewMockServerCommand creates the mock-server command
func NewMockServerCommand(app *App) *cobra.Command {
	var (
		addr     string
		basePath string
		seed     bool
		grace    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory component pattern API",
		Long: `Serve the component pattern, field type and page endpoints from memory.
Data is lost when the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = app.Config.Mock.Addr
			}
			if !cmd.Flags().Changed("seed") {
				seed = app.Config.Mock.Seed
			}

			server, err := mockapi.NewServer(cmd.Context(),
				mockapi.WithBasePath(basePath),
				mockapi.WithSeed(seed),
				mockapi.WithLogger(app.Logger),
				mockapi.WithRegistry(app.Registry),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, app.Logger, &http.Server{
				Addr:              addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}, basePath, grace)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default mock.addr)")
	cmd.Flags().StringVar(&basePath, "base-path", mockapi.DefaultOptions().BasePath, "path prefix for every endpoint")
	cmd.Flags().BoolVar(&seed, "seed", true, "load sample field types, pages and patterns (default mock.seed)")
	cmd.Flags().DurationVar(&grace, "shutdown-grace", 5*time.Second, "time allowed for in-flight requests on shutdown")
	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, logger *zap.Logger, httpServer *http.Server, basePath string, grace time.Duration) error {
	successColor := color.New(color.FgGreen, color.Bold)
	successColor.Fprintf(cmd.OutOrStdout(), "Listening on %s%s\n", httpServer.Addr, basePath)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	logger.Info("shutting down mock server", zap.String("addr", httpServer.Addr))
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
