package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart_bulb/internal/handlers"
	"smart_bulb/internal/hub"
	"smart_bulb/internal/logger"
	"smart_bulb/internal/repository"
	"smart_bulb/internal/repository/db"
	"smart_bulb/internal/server"
	"smart_bulb/internal/service"

	"github.com/spf13/viper"
)

const (
	defaultMotionTick   = 3 * time.Second
	defaultRatedWattage = 9.0 // W, a small LED bulb
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	notifier := hub.New(log)
	services := service.NewService(repos, notifier, statsConfig(log), log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start motion stub (via composed service)
	go services.Motion.Run(ctx, motionTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "bulb.db")
		dbPath = "bulb.db"
	}
	return db.InitDB(dbPath)
}

// statsConfig pulls the pricing constants out of configuration.
func statsConfig(log *logger.Logger) service.StatsConfig {
	cfg := service.StatsConfig{
		RatedWattage: viper.GetFloat64("bulb.rated_wattage"),
	}
	if cfg.RatedWattage <= 0 {
		cfg.RatedWattage = defaultRatedWattage
	}
	if err := viper.UnmarshalKey("stats.tiers", &cfg.Tiers); err != nil {
		log.Warnw("invalid stats.tiers in config; cost will be zero", "err", err)
		cfg.Tiers = nil
	}
	return cfg
}

func motionTick() time.Duration {
	if d := viper.GetDuration("motion.tick"); d > 0 {
		return d
	}
	return defaultMotionTick
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
