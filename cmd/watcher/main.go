package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-market-escrow.git/internal/config"
	kafkax "github.com/ariefcatur/go-market-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-market-escrow.git/internal/market"
	"github.com/ariefcatur/go-market-escrow.git/internal/postgres"
	"github.com/ariefcatur/go-market-escrow.git/internal/redisx"
	"github.com/ariefcatur/go-market-escrow.git/internal/watcher"
	"github.com/joho/godotenv"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB (event journal)
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	journal := &watcher.JournalRepo{DB: db}
	if err := journal.EnsureSchema(ctx); err != nil {
		log.Fatalf("journal schema: %v", err)
	}

	// Redis (dedup + status cache)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &watcher.Service{
		Journal:     journal,
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-watcher",
	}

	// Consumers, one per lifecycle topic
	group := getenv("WATCHER_GROUP", "market-watcher")
	workers := mustAtoi(os.Getenv("WATCHER_WORKERS"), "4")
	cProd := kafkax.NewConsumer(cfg.KafkaBrokers, group, market.TopicProductEvents, workers)
	cOrd := kafkax.NewConsumer(cfg.KafkaBrokers, group, market.TopicOrderEvents, workers)

	for _, c := range []*kafkax.Consumer{cProd, cOrd} {
		go func(c *kafkax.Consumer) {
			if err := c.Start(ctx, svc.HandleEvent); err != nil {
				log.Printf("consumer exit: %v", err)
				cancel()
			}
		}(c)
	}
	log.Printf("watcher started: group=%s workers=%d", group, workers)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down watcher...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
