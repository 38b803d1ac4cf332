package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mimosaworkshops/testimonial-api/internal/config"
	"github.com/mimosaworkshops/testimonial-api/internal/database"
	"github.com/mimosaworkshops/testimonial-api/internal/generation"
	"github.com/mimosaworkshops/testimonial-api/internal/intake"
	"github.com/mimosaworkshops/testimonial-api/internal/logging"
	"github.com/mimosaworkshops/testimonial-api/internal/server"
	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "testimonial-api",
		Short: "Workshop testimonial intake and generation service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("gemini-model", defaults.GetString("gemini.model"), "Generation model name")
	cmd.PersistentFlags().String("brand-name", defaults.GetString("brand.name"), "Workshop brand name used in prompts")
	cmd.PersistentFlags().String("gemini-api-key", "", "Gemini API key (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "gemini.model", "gemini-model")
	bindFlag(cmd, "brand.name", "brand-name")
	bindFlag(cmd, "gemini.api_key", "gemini-api-key")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	backend, err := testimonial.NewDatabaseBackend(testimonial.DatabaseBackendConfig{
		Database: db,
		Clock:    time.Now,
	})
	if err != nil {
		return err
	}

	store, err := testimonial.NewStore(testimonial.StoreConfig{
		Backend: backend,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	model, closeModel, err := generation.NewGeminiModel(ctx, appConfig.GeminiAPIKey, appConfig.GeminiModel)
	if err != nil {
		return err
	}
	defer closeModel() //nolint:errcheck

	generator, err := generation.NewClient(generation.ClientConfig{
		Model:     model,
		BrandName: appConfig.BrandName,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	intakeManager, err := intake.NewManager(intake.ManagerConfig{
		Store:     store,
		Generator: generator,
		Clock:     time.Now,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Store:  store,
		Intake: intakeManager,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
