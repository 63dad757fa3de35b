package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsehustle/pulsehustle/internal/config"
	"github.com/pulsehustle/pulsehustle/internal/db"
	"github.com/pulsehustle/pulsehustle/internal/httpapi"
	"github.com/pulsehustle/pulsehustle/internal/matching"
	"github.com/pulsehustle/pulsehustle/internal/realtime"
	"github.com/pulsehustle/pulsehustle/internal/store/rabbitmq"
	"github.com/pulsehustle/pulsehustle/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var rds *redisstore.Store
	var relay *realtime.Relay
	if cfg.RedisAddr != "" {
		store := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			log.Printf("redis unavailable, caching and realtime disabled: %v", err)
		} else {
			rds = store
			relay = realtime.New(store.Client())
		}
		cancel()
	}

	// queue: rabbitmq when configured, in-process goroutines otherwise
	var dispatcher matching.Dispatcher
	var pub *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		pub, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit dial: %v", err)
		}
		defer pub.Close()
		dispatcher = pub
	} else {
		dispatcher = matching.NewInProcessDispatcher(100 * time.Millisecond)
	}

	h := httpapi.NewHandler(gdb, cfg, rds, relay, dispatcher)
	r := httpapi.NewRouter(h, cfg)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if relay != nil {
		relay.Close()
	}
	if rds != nil {
		_ = rds.Close()
	}
}
