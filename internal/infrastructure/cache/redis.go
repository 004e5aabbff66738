package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
)

// nullValue marks a confirmed miss in Redis so repeated lookups for a
// protein with no artifact do not hammer the backing loader.
const nullValue = "__null__"

// RedisConfig carries the connection parameters for the shared cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	Username     string        `mapstructure:"username" yaml:"username" json:"username"`
	Password     string        `mapstructure:"password" yaml:"password" json:"password"`
	DB           int           `mapstructure:"db" yaml:"db" json:"db"`
	PoolSize     int           `mapstructure:"pool_size" yaml:"pool_size" json:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(cfg RedisConfig, log logging.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheUnavailable, "redis connection failed").
			WithDetail("addr=" + cfg.Addr)
	}
	log.Info("redis side cache connected", logging.String("addr", cfg.Addr))
	return rdb, nil
}

type redisCache struct {
	rdb     redis.UniversalClient
	loader  SideCache
	log     logging.Logger
	prefix  string
	ttl     time.Duration
	nullTTL time.Duration
	sf      singleflight.Group
}

// RedisOption customizes a Redis-backed SideCache.
type RedisOption func(*redisCache)

// WithPrefix overrides the key namespace (default "enzymeset:").
func WithPrefix(prefix string) RedisOption {
	return func(c *redisCache) { c.prefix = prefix }
}

// WithTTL overrides the artifact TTL (default 6h).
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *redisCache) { c.ttl = ttl }
}

// WithNullTTL overrides how long a confirmed miss is remembered (default 5m).
func WithNullTTL(ttl time.Duration) RedisOption {
	return func(c *redisCache) { c.nullTTL = ttl }
}

// NewRedisCache wraps a backing loader (typically the file cache) with a
// shared Redis layer.  Concurrent first-loads of the same protein are
// deduplicated through singleflight; confirmed misses are null-cached.
func NewRedisCache(rdb redis.UniversalClient, loader SideCache, log logging.Logger, opts ...RedisOption) SideCache {
	if log == nil {
		log = logging.Default()
	}
	c := &redisCache{
		rdb:     rdb,
		loader:  loader,
		log:     log.Named("rediscache"),
		prefix:  "enzymeset:",
		ttl:     6 * time.Hour,
		nullTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(kind, uniprotID string) string {
	return c.prefix + kind + ":" + uniprotID
}

// jitterTTL spreads expirations +/- 10% so a cohort of workers warmed at the
// same time does not expire at the same time.
func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

// getOrLoad implements the shared read-through path: Redis hit, null-cache
// hit, or singleflighted load from the backing loader.
func (c *redisCache) getOrLoad(ctx context.Context, key string, load func() (interface{}, error)) ([]byte, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		if string(data) == nullValue {
			return nil, ErrMiss
		}
		return data, nil
	}
	if err != redis.Nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheUnavailable, "redis get failed")
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		val, loadErr := load()
		if IsMiss(loadErr) {
			if setErr := c.rdb.Set(ctx, key, nullValue, c.nullTTL).Err(); setErr != nil {
				c.log.Warn("failed to null-cache miss", logging.String("key", key), logging.Err(setErr))
			}
			return nil, ErrMiss
		}
		if loadErr != nil {
			return nil, loadErr
		}
		blob, marshalErr := json.Marshal(val)
		if marshalErr != nil {
			return nil, errors.Wrap(marshalErr, errors.ErrCodeSerialization, "failed to marshal artifact")
		}
		if setErr := c.rdb.Set(ctx, key, blob, c.jitterTTL(c.ttl)).Err(); setErr != nil {
			c.log.Warn("failed to populate cache", logging.String("key", key), logging.Err(setErr))
		}
		return blob, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *redisCache) ProteinFeatures(ctx context.Context, uniprotID string) (*FeatureBlob, error) {
	data, err := c.getOrLoad(ctx, c.fullKey("feat", uniprotID), func() (interface{}, error) {
		return c.loader.ProteinFeatures(ctx, uniprotID)
	})
	if err != nil {
		return nil, err
	}
	var blob FeatureBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeatureCorrupt, "failed to parse cached feature blob").
			WithDetail("uniprot_id=" + uniprotID)
	}
	return &blob, nil
}

func (c *redisCache) ResidueAnnotation(ctx context.Context, uniprotID string) ([]float64, error) {
	data, err := c.getOrLoad(ctx, c.fullKey("annot", uniprotID), func() (interface{}, error) {
		return c.loader.ResidueAnnotation(ctx, uniprotID)
	})
	if err != nil {
		return nil, err
	}
	var scores []float64
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeatureCorrupt, "failed to parse cached annotation").
			WithDetail("uniprot_id=" + uniprotID)
	}
	return scores, nil
}
