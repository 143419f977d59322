package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/config"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	dashboardKeyPrefix  = "dashboard:view"
	defaultDashboardTTL = time.Minute
	invalidateBatchSize = 100
	pingTimeout         = 5 * time.Second
)

// DashboardCache stores computed dashboards per filter and leaderboard size.
type DashboardCache interface {
	GetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int) (*domain.Dashboard, bool, error)
	SetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int, dashboard *domain.Dashboard) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

// NewDashboardCache connects to redis when caching is enabled and returns a
// noop cache otherwise.
func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	opts, err := dashboardRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dashboard cache: redis ping %s failed: %w", opts.Addr, err)
	}

	return NewRedisDashboardCache(client, time.Duration(cfg.DashboardTTLSeconds)*time.Second), nil
}

// NewRedisDashboardCache wraps an existing client.
func NewRedisDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}
	return &redisDashboardCache{client: client, ttl: ttl}
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

// dashboardRedisOptions prefers REDIS_URL and falls back to host/port fields
// with local defaults.
func dashboardRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("dashboard cache: invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (c *redisDashboardCache) GetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int) (*domain.Dashboard, bool, error) {
	payload, err := c.client.Get(ctx, buildDashboardKey(filter, topN)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	dashboard, err := decodeDashboard(payload)
	if err != nil {
		return nil, false, err
	}
	return dashboard, true, nil
}

func (c *redisDashboardCache) SetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int, dashboard *domain.Dashboard) error {
	payload, err := encodeDashboard(dashboard)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, buildDashboardKey(filter, topN), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll scans the dashboard key space in batches and deletes it.
func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, dashboardKeyPrefix+":*", invalidateBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
			deleted += len(keys)
		}
		if cursor = next; cursor == 0 {
			break
		}
	}

	log.Debug().Int("keys", deleted).Msg("dashboard cache invalidated")
	return nil
}

func (n *noopDashboardCache) GetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int) (*domain.Dashboard, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int, dashboard *domain.Dashboard) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func encodeDashboard(dashboard *domain.Dashboard) ([]byte, error) {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return nil, fmt.Errorf("encode dashboard cache: %w", err)
	}
	return payload, nil
}

func decodeDashboard(payload []byte) (*domain.Dashboard, error) {
	var dashboard domain.Dashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, fmt.Errorf("decode dashboard cache: %w", err)
	}
	return &dashboard, nil
}

func buildDashboardKey(filter domain.DashboardFilter, topN int) string {
	raw := fmt.Sprintf("%s|top=%d", filter.Key(), topN)
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", dashboardKeyPrefix, hex.EncodeToString(hash[:]))
}
