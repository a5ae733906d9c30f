// FILE: cmd/candlesim/main.go
// Package main – simulator entrypoint and HTTP/metrics server.
//
// Boot sequence:
//   1) flag.Parse()                – read -candles, -config, -interval
//   2) config.FromEnv()/LoadFile() – build exchange.Config
//   3) marketdata.LoadCSV()        – load the candle table
//   4) wire account/exchange/backtest.Driver
//   5) start Prometheus /metrics server on -port
//   6) Driver.Run() until candles exhausted or liquidation
//
// Example:
//   go run ./cmd/candlesim -candles testdata/btcusdt_1h.csv -interval 60
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"candlesim/internal/account"
	"candlesim/internal/backtest"
	"candlesim/internal/config"
	"candlesim/internal/eventlog"
	"candlesim/internal/exchange"
	"candlesim/internal/marketdata"
	"candlesim/internal/metrics"
	"candlesim/internal/orderbook"
	"candlesim/internal/strategy"
)

func main() {
	var candlesPath string
	var configPath string
	var startingBalance float64
	var callInterval float64
	var port int
	flag.StringVar(&candlesPath, "candles", "", "Path to candle CSV (timestamp_ms,open,high,low,close,volume)")
	flag.StringVar(&configPath, "config", "", "Optional YAML/JSON config file (overrides env vars)")
	flag.Float64Var(&startingBalance, "balance", 10000, "Starting account balance")
	flag.Float64Var(&callInterval, "interval", 60, "Strategy call interval in candle-seconds")
	flag.IntVar(&port, "port", 9090, "Port to serve /metrics on")
	flag.Parse()

	if candlesPath == "" {
		log.Fatal("missing -candles")
	}

	cfg := config.FromEnv()
	if configPath != "" {
		fileCfg, interval, err := config.LoadFile(configPath)
		if err != nil {
			log.Fatalf("load config %s: %v", configPath, err)
		}
		cfg = fileCfg
		if interval > 0 {
			callInterval = interval
		}
	}

	candles, err := marketdata.LoadCSV(candlesPath)
	if err != nil {
		log.Fatalf("load candles %s: %v", candlesPath, err)
	}
	if len(candles) == 0 {
		log.Fatal("candle file is empty")
	}

	book := orderbook.NewBook()
	acct := account.New(book, decimal.NewFromFloat(startingBalance), cfg.Symbol)

	acct.Subscribe(metrics.NewRecorder())
	eventRecorder := eventlog.NewRecorder(os.Stdout)
	acct.Subscribe(eventRecorder)

	ex := exchange.New(cfg, acct, book)
	ex.OnDropped(eventRecorder.Dropped)

	bot := strategy.NoOp{Interval: callInterval}
	driver := backtest.New(ex, bot)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		log.Printf("serving metrics on :%d/metrics", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	steps := driver.Run(ctx, candles)
	log.Printf("backtest finished after %d candles, final balance=%s", steps+1, acct.Balance().String())

	shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
	defer c()
	_ = srv.Shutdown(shutdownCtx)
}
