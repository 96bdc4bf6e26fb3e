package util

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewlens/internal/app/analytics/entity"
	"reviewlens/pkg/metrics"
)

const serviceName = "reviewlens"

// Все ключи кеша агрегатов имеют вид charts:<график>:<товар>:<md5 параметров>,
// что позволяет инвалидировать кеш одного товара одним проходом SCAN
const chartKeyPrefix = "charts"

// RedisCache хранит сериализованные в JSON ответы аналитических endpoints
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisCache создает клиент кеша и проверяет соединение
func NewRedisCache(addr, password string, db int, defaultTTL time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, defaultTTL: defaultTTL}, nil
}

// ChartKey строит ключ кеша для одного графика одного товара.
// Параметры запроса хешируются в стабильном порядке, чтобы одинаковые
// запросы попадали в один ключ.
func ChartKey(chart, productID string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(params[name])
	}

	sum := md5.Sum([]byte(sb.String()))
	return fmt.Sprintf("%s:%s:%s:%x", chartKeyPrefix, chart, productID, sum)
}

// GetJSON читает значение из кеша и десериализует его в dest.
// Возвращает false при промахе; ошибка возможна только на битых данных.
func (r *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	data, err := r.client.Get(ctx, key).Bytes()
	timer.ObserveDuration()

	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, chartKeyPrefix)
			return false, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	metrics.RecordCacheHit(serviceName, chartKeyPrefix)
	return true, nil
}

// SetJSON сериализует значение и кладет в кеш с TTL.
// Нулевой ttl означает TTL по умолчанию.
func (r *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for cache: %w", err)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	err = r.client.Set(ctx, key, data, ttl).Err()
	timer.ObserveDuration()

	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}

	return nil
}

// InvalidateProduct удаляет все закешированные графики одного товара.
// Возвращает число удаленных ключей.
func (r *RedisCache) InvalidateProduct(ctx context.Context, productID string) (int64, error) {
	pattern := fmt.Sprintf("%s:*:%s:*", chartKeyPrefix, productID)

	var deleted int64
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
		n, err := r.client.Del(ctx, iter.Val()).Result()
		timer.ObserveDuration()
		if err != nil {
			metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
			return deleted, fmt.Errorf("failed to delete cache key %s: %w", iter.Val(), err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return deleted, nil
}

// Stats возвращает состояние кеша для административного endpoint
func (r *RedisCache) Stats(ctx context.Context) (entity.CacheStatsResponse, error) {
	keys, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return entity.CacheStatsResponse{Connected: false}, fmt.Errorf("failed to get cache stats: %w", err)
	}
	return entity.CacheStatsResponse{Connected: true, Keys: keys}, nil
}

// Healthy проверяет доступность Redis для /health
func (r *RedisCache) Healthy(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

// Close закрывает соединение с Redis
func (r *RedisCache) Close() error {
	return r.client.Close()
}
