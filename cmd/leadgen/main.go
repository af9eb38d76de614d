package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/lead-crawler/internal/api"
	"github.com/user/lead-crawler/internal/domain"
	"github.com/user/lead-crawler/internal/pipeline"
	"github.com/user/lead-crawler/internal/search"
	"github.com/user/lead-crawler/internal/segment"
)

var (
	envFile        string
	enrichLocation string
)

var rootCmd = &cobra.Command{
	Use:   "leadgen",
	Short: "Google Maps lead generator with website contact crawling",
	Long: `leadgen searches Google Maps for businesses, visits each business website
to find an email address, a mobile number and a WhatsApp number, and appends
the results to a deduplicated CSV. The prepare command turns a finished CSV
into audience files for ads platforms, a CRM and WhatsApp.`,
	SilenceUsage: true,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [config-file]",
	Short: "Run every search config and export the enriched leads",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			path := a.cfg.SearchConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			configs, err := search.LoadConfigs(path, a.cfg.ZoomMin, a.cfg.ZoomMax)
			if err != nil {
				return err
			}
			a.logger.Info("loaded search configs", zap.String("file", path), zap.Int("configs", len(configs)))
			sum, err := a.runner(a.mapsProvider(), true).Run(ctx, configs)
			report(a, sum)
			return err
		})
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <leads.json>",
	Short: "Crawl the websites of leads exported by another maps tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			cfg := domain.SearchConfig{Query: args[0], Location: enrichLocation}
			sum, err := a.runner(search.FileProvider{Path: args[0]}, true).Run(ctx, []domain.SearchConfig{cfg})
			report(a, sum)
			return err
		})
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare <leads.csv>",
	Short: "Segment a finished lead CSV into platform import files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			p := segment.NewProcessor(args[0], segment.Options{
				OutputDir:      a.cfg.PreparedDir,
				MaxRowsPerFile: a.cfg.MaxRowsPerFile,
			}, a.logger)
			sum, err := p.ProcessAll(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d files prepared in %s\n", len(sum.Files), sum.OutputDir)
			return nil
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), serve)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to the env file")
	enrichCmd.Flags().StringVarP(&enrichLocation, "location", "l", "", "Location of the leads, used to pick the phone region")
	enrichCmd.MarkFlagRequired("location")

	rootCmd.AddCommand(crawlCmd, enrichCmd, prepareCmd, serveCmd)
}

func main() {
	Execute()
}

// Execute runs the root command, cancelling it on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	a, err := newApp(ctx, envFile)
	if err != nil {
		return err
	}
	defer a.close()
	if err := fn(ctx, a); err != nil {
		a.logger.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}

func report(a *app, sum pipeline.Summary) {
	a.logger.Info("run finished",
		zap.Int("searches", sum.Searches),
		zap.Int("failed_searches", sum.FailedSearch),
		zap.Int("leads", sum.Leads),
		zap.Int("with_email", sum.WithEmail),
		zap.Int("with_mobile", sum.WithMobile),
		zap.Int("with_whatsapp", sum.WithWhatsApp),
		zap.Int("browser_errors", sum.BrowserErrors),
		zap.Int("exported", sum.Exported),
		zap.String("file", a.exportPath()))
}

func serve(ctx context.Context, a *app) error {
	checks := map[string]api.Pinger{"redis": nil, "postgres": nil}
	var leads api.LeadFinder
	if a.redis != nil {
		checks["redis"] = a.redis
	}
	if a.pg != nil {
		checks["postgres"] = a.pg
		leads = a.pg
	}

	server := api.NewServer(api.Options{
		Port:    a.cfg.ServerPort,
		ZoomMin: a.cfg.ZoomMin,
		ZoomMax: a.cfg.ZoomMax,
	}, a.runner(a.mapsProvider(), false), leads, checks, a.metrics, a.registry, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	a.logger.Info("server started", zap.String("port", a.cfg.ServerPort))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.logger.Info("server exiting")
	return nil
}
