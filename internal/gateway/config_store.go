package gateway

import (
	"context"
	"encoding/json"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"paperbot/internal/model"
)

const tradingConfigRedisKey = "paperbot:config"

// ConfigStore persists the trading configuration in Redis so that
// operator changes survive restarts. All methods are nil-safe: a store
// without a Redis client is a no-op.
type ConfigStore struct {
	rdb *goredis.Client
}

// NewConfigStore creates a ConfigStore. rdb may be nil.
func NewConfigStore(rdb *goredis.Client) *ConfigStore {
	return &ConfigStore{rdb: rdb}
}

// Load restores the saved trading config from Redis, if present.
// Called once during startup. Returns false when nothing was restored.
func (cs *ConfigStore) Load(ctx context.Context, cfg *model.TradingConfig) bool {
	if cs == nil || cs.rdb == nil {
		return false
	}
	data, err := cs.rdb.Get(ctx, tradingConfigRedisKey).Result()
	if err != nil {
		return false
	}
	var restored model.TradingConfig
	if json.Unmarshal([]byte(data), &restored) != nil {
		return false
	}
	*cfg = restored
	log.Printf("[config_store] restored trading config from Redis (mode %s)", restored.Mode)
	return true
}

// Save persists the trading config to Redis, fire-and-forget.
func (cs *ConfigStore) Save(cfg model.TradingConfig) {
	if cs == nil || cs.rdb == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cs.rdb.Set(ctx, tradingConfigRedisKey, data, 0).Err(); err != nil {
		log.Printf("[config_store] WARNING: failed to persist trading config to Redis: %v", err)
	}
}
