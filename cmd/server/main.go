/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loan computation service. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Open the SQLite snapshot store
  3. Connect the summary cache (Redis, or in-process when no address given)
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: loans.db)
           Use ":memory:" for an in-memory database
  -redis   Redis address for the summary cache (default: none, in-process)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/loan-engine/api"
	"github.com/warp/loan-engine/cache"
	"github.com/warp/loan-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "loans.db", "SQLite database path")
	redisAddr := flag.String("redis", "", "Redis address for the summary cache (empty = in-process cache)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	snapshots, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer snapshots.Close()

	var summaries cache.Cache = cache.NewMemory()
	if *redisAddr != "" {
		redisCache := cache.NewRedis(*redisAddr)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		defer redisCache.Close()
		summaries = redisCache
		log.WithField("addr", *redisAddr).Info("summary cache on Redis")
	}

	handler := api.NewHandler(snapshots, summaries, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", *port).Info("loan engine listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("forced shutdown")
	}

	log.Info("server stopped")
}
