// cmd/botserver — Paper-trading bot service.
//
// Streams a live ticker for one symbol, evaluates the indicator stack on
// every tick and on a fixed interval, and simulates trades against
// virtual capital. Exposes the control API on LISTEN_ADDR and Prometheus
// metrics on METRICS_ADDR.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"paperbot/config"
	"paperbot/internal/bot"
	"paperbot/internal/feed"
	"paperbot/internal/gateway"
	"paperbot/internal/logger"
	"paperbot/internal/metrics"
	"paperbot/internal/model"
	"paperbot/internal/notification"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg := config.Load()
	logg := logger.Init("botserver", slog.LevelInfo)
	logg.Info("starting", slog.String("symbol", cfg.Symbol))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Redis for config persistence. The bot runs fine without it.
	var store *gateway.ConfigStore
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[botserver] WARNING: redis unreachable at %s: %v, config persistence disabled", cfg.RedisAddr, err)
		} else {
			log.Printf("[botserver] redis connected at %s", cfg.RedisAddr)
			store = gateway.NewConfigStore(rdb)
			store.Load(ctx, &cfg.Trading)
		}
	}

	met := metrics.New()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)
	metricsSrv.Start()

	var notifier notification.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		notifier = notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		log.Printf("[botserver] telegram notifications enabled")
	}

	eng := bot.New(cfg.Trading, bot.Options{
		Metrics:  met,
		Notifier: notifier,
		Logger:   logg,
	})

	// Price feed: one goroutine reads the stream, one drains into the engine.
	tickCh := make(chan model.Tick, 256)
	f := feed.New(feed.Config{
		BaseURL: cfg.BinanceWSURL,
		Symbol:  cfg.Symbol,
	}, met)
	go f.Run(ctx, tickCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-tickCh:
				eng.OnTick(t)
			}
		}
	}()

	// Interval re-evaluation alongside the tick-driven path.
	go eng.Run(ctx)

	if cfg.AutoStart {
		if err := eng.Start(cfg.Trading.Capital); err != nil {
			log.Printf("[botserver] WARNING: auto-start failed: %v", err)
		}
	}

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, eng, store)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("[botserver] ✅ serving at http://localhost%s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[botserver] server error: %v", err)
		}
	}()

	<-sigCh
	log.Println("[botserver] shutting down...")

	// Close any open position before the process exits.
	eng.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
}
