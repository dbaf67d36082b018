package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insightdelivered/eod-ledger-converter/internal/api"
	"github.com/insightdelivered/eod-ledger-converter/internal/config"
	"github.com/insightdelivered/eod-ledger-converter/internal/converter"
	"github.com/insightdelivered/eod-ledger-converter/internal/extractor"
	"github.com/insightdelivered/eod-ledger-converter/internal/logger"
	"github.com/insightdelivered/eod-ledger-converter/internal/metrics"
)

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(cfg *config.Config) error {
	appLogger := logger.Get()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewRecorder(reg)

	h := &api.Handler{
		Converter: converter.New(cfg.Converter.DefaultBank, appLogger, rec),
		Extractor: extractor.New(cfg.Converter.PdftotextFallback, appLogger),
		Metrics:   rec,
		Logger:    appLogger,
	}
	app := api.NewApp(h, api.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Gatherer:     reg,
		AccessLog:    true,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
		return err
	}
	return nil
}
