package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-market-escrow.git/internal/config"
	"github.com/ariefcatur/go-market-escrow.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-market-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-market-escrow.git/internal/ledger"
	"github.com/ariefcatur/go-market-escrow.git/internal/market"
	"github.com/ariefcatur/go-market-escrow.git/internal/pricing"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ledger gateway
	lc := ledger.New(cfg.LedgerRPCURL, cfg.LedgerTimeout)

	// Price oracle + daily cache
	oracle := pricing.NewOracle(cfg.OracleBaseURL, cfg.OracleAsset, cfg.OracleFiat)
	converter := pricing.NewConverter(oracle)

	// Kafka producers, one per lifecycle topic
	pProd := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicProductEvents, 1024)
	pProd.Start(ctx)
	pOrd := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderEvents, 1024)
	pOrd.Start(ctx)

	// Engine, listings & handler
	engine := &market.Engine{
		Ledger:   lc,
		Verifier: &market.Verifier{Ledger: lc},
		Products: pProd,
		Orders:   pOrd,
		Service:  cfg.ServiceName,
	}
	listings := &market.Listings{Ledger: lc}

	router := httpx.NewRouter()
	mh := &httpx.MarketHandler{
		Engine:    engine,
		Listings:  listings,
		Converter: converter,
		Escrow:    cfg.EscrowAddress,
	}
	mh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pProd.Close() // close inbox -> flush & close writer
	pOrd.Close()
	cancel() // stop producer loops
	pProd.WaitClosed()
	pOrd.WaitClosed()
}
