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

	"postsurvey/internal/app"
	"postsurvey/internal/config"
	"postsurvey/internal/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const shutdownTimeout = 30 * time.Second

// @title			Post-purchase Survey API
// @version		1.0
// @description	Single-question post-purchase surveys with per-order responses and tallies.
// @BasePath		/v1
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "surveyd",
	Short: "Post-purchase survey service",
	Long: `surveyd serves single-question post-purchase surveys: administrators
manage surveys and read response tallies, shoppers answer once per order.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")

	seedCmd.Flags().Bool("force", false, "seed even when surveys already exist")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadApp reads the configuration, initializes logging and wires the app.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	return app.New(cmd.Context(), cfg)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		logger := log.WithComponent("server")
		srv := &http.Server{
			Addr:              a.Config.HTTPAddr,
			Handler:           a.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info().
				Str("addr", srv.Addr).
				Str("backend", a.Config.StoreBackend).
				Str("version", Version).
				Msg("Server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			logger.Info().Str("signal", sig.String()).Msg("Shutting down server")
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info().Msg("Server exited")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample surveys and responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		res, err := a.Seed(cmd.Context(), force)
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Println("Surveys already exist, nothing seeded (use --force to seed anyway)")
			return nil
		}
		fmt.Printf("Seeded %d surveys and %d responses\n", res.Surveys, res.Responses)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("surveyd version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
	},
}
