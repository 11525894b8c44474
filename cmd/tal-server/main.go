package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/tal-calculator/internal/config"
	"github.com/iwvelando/tal-calculator/internal/geocode"
	"github.com/iwvelando/tal-calculator/internal/i18n"
	"github.com/iwvelando/tal-calculator/internal/logging"
	"github.com/iwvelando/tal-calculator/internal/server"
	"github.com/iwvelando/tal-calculator/internal/store"
	"github.com/iwvelando/tal-calculator/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	serverConfigLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	_ = godotenv.Load()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		serverConf.Address = *address
	}

	logger, err := logging.New(serverConf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	conf, err := config.LoadConfiguration(serverConf.CalculatorConfig)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("calculator configuration not found, using defaults",
			zap.String("op", "main"),
			zap.String("path", serverConf.CalculatorConfig),
		)
		conf, err = config.Defaults(), nil
	}
	if err != nil {
		logger.Fatal("failed to load calculator configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	lang, err := i18n.Parse(conf.Output.Language)
	if err != nil {
		logger.Fatal("invalid output language",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	fileStore, err := store.NewFileStore(conf.Storage.Path, logger)
	if err != nil {
		logger.Fatal("failed to open form storage",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	handler := server.NewHandler(server.Options{
		Logger:        logger,
		MaxUploadSize: serverConf.UploadSizeBytes(),
		Version:       version,
		Parameters:    conf.Calculation.Parameters(),
		Language:      lang,
		Store:         fileStore,
		StorageKey:    conf.Storage.Key,
		AutosaveDelay: conf.Storage.AutosaveDelay,
		Lookup:        geocode.NewNominatim(conf.Geocode.URL, conf.Geocode.UserAgent, nil, logger),
	})

	srv := &http.Server{
		Addr:        serverConf.Address,
		Handler:     handler,
		ReadTimeout: serverConf.ReadTimeoutDuration(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main"),
			zap.String("address", serverConf.Address),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeoutDuration())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	if err := handler.Close(); err != nil {
		logger.Error("failed to save pending form",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}
