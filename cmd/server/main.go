/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll report server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Configure logging
  3. Load the rule set
  4. Initialize SQLite store
  5. Create API handler and router
  6. Start the period-close scheduler (when EXPORT_DIR is set)
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: $PORT or 8080)
  -db      SQLite database path (default: $DB_PATH or payroll.db)
           Use ":memory:" for in-memory database
  -rules   JSON rule file (default: $RULES_FILE, built-in rules when empty)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete
  4. Close database connection

EXAMPLES:
  ./server -db="./data/payroll.db"
  ./server -db=":memory:" -port=3000
  LOG_LEVEL=debug EXPORT_DIR=./exports ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment
	port := flag.Int("port", cfg.Server.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	rulesFile := flag.String("rules", cfg.RulesFile, "JSON rule file")
	flag.Parse()

	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatalf("Invalid log configuration: %v", err)
	}

	rules, err := factory.NewRulesFactory().LoadFile(*rulesFile)
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}
	engine, err := payroll.NewEngine(rules)
	if err != nil {
		log.Fatalf("Invalid rules: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)
	handler.Engine = engine
	handler.ImportYear = cfg.ImportYear

	router := api.NewRouter(handler, cfg.CORSOrigins...)

	scheduler := api.NewPeriodCloseScheduler(handler, cfg.Export.Dir)
	if format, err := export.ParseFormat(cfg.Export.Format); err == nil {
		scheduler.Format = format
	} else {
		log.Warnf("Ignoring EXPORT_FORMAT: %v", err)
	}
	if cfg.Export.CheckInterval > 0 {
		scheduler.CheckInterval = time.Duration(cfg.Export.CheckInterval) * time.Second
	}
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(log.Fields{"port": *port, "db": *dbPath}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
