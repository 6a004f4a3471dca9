package config

import (
	"log"
	"os"
	"strconv"

	"paperbot/internal/model"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Service
	ListenAddr  string
	MetricsAddr string
	AutoStart   bool

	// Price feed
	Symbol       string
	BinanceWSURL string

	// Optional infrastructure
	RedisAddr     string // empty disables the Redis-backed config store
	RedisPassword string

	// Notifications (optional)
	TelegramToken  string
	TelegramChatID string

	// Trading defaults (overridable through the control API)
	Trading model.TradingConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		AutoStart:   getEnvBool("AUTO_START", false),

		Symbol:       getEnv("SYMBOL", "BTCUSDT"),
		BinanceWSURL: getEnv("BINANCE_WS_URL", "wss://stream.binance.com:9443/ws"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),

		Trading: model.TradingConfig{
			Mode:             model.Mode(getEnv("TRADING_MODE", string(model.ModeAggressive))),
			Capital:          getEnvFloat("TRADING_CAPITAL", 100),
			PositionSizePct:  getEnvFloat("TRADE_PERCENT", 15),
			TakeProfitPct:    getEnvFloat("TAKE_PROFIT_PCT", 5),
			StopLossPct:      getEnvFloat("STOP_LOSS_PCT", 2),
			TrailingStartPct: getEnvFloat("TRAILING_START", 2),
			TrailingDeltaPct: getEnvFloat("TRAILING_DELTA", 1.5),
			MinScorePct:      getEnvInt("MIN_SCORE", 60),
			LongEnabled:      getEnvBool("LONG_ENABLED", true),
			ShortEnabled:     getEnvBool("SHORT_ENABLED", true),
		},
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid bool for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return b
}
