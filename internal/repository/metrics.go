package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "explorer:metrics:"

// Metrics stores request and catalog-failure counters in Redis
type Metrics struct {
	client *redis.Client
}

// RouteStats represents statistics for one route
type RouteStats struct {
	Route        string  `json:"route"`
	TotalCalls   int64   `json:"total_calls"`
	SuccessCalls int64   `json:"success_calls"`
	ErrorCalls   int64   `json:"error_calls"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// DailyStats represents daily request statistics
type DailyStats struct {
	Date       string  `json:"date"`
	TotalCalls int64   `json:"total_calls"`
	AvgLatency float64 `json:"avg_latency"`
}

// OverallStats represents overall service statistics
type OverallStats struct {
	TotalCalls    int64            `json:"total_calls"`
	TodayCalls    int64            `json:"today_calls"`
	AvgLatencyMs  float64          `json:"avg_latency_ms"`
	ErrorRate     float64          `json:"error_rate"`
	TopRoutes     []RouteStats     `json:"top_routes"`
	DailyTrend    []DailyStats     `json:"daily_trend"`
	CatalogErrors map[string]int64 `json:"catalog_errors"`
	Uptime        int64            `json:"uptime_seconds"`
}

// NewMetrics connects to Redis and checks the connection
func NewMetrics(redisURL string) (*Metrics, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// log the address only, the URL may carry a password
	log.Info().Str("addr", opt.Addr).Msg("✅ Redis connected")

	return &Metrics{client: client}, nil
}

// RecordRequest records one served request
func (m *Metrics) RecordRequest(ctx context.Context, route string, statusCode int, latencyMs float64) error {
	now := time.Now()
	today := now.Format("2006-01-02")

	pipe := m.client.Pipeline()

	routeKey := keyPrefix + "route:" + route
	pipe.HIncrBy(ctx, routeKey, "total", 1)
	pipe.HIncrByFloat(ctx, routeKey, "latency_sum", latencyMs)
	if statusCode >= 200 && statusCode < 400 {
		pipe.HIncrBy(ctx, routeKey, "success", 1)
	} else {
		pipe.HIncrBy(ctx, routeKey, "error", 1)
	}

	dailyKey := keyPrefix + "daily:" + today
	pipe.HIncrBy(ctx, dailyKey, "total", 1)
	pipe.HIncrByFloat(ctx, dailyKey, "latency_sum", latencyMs)
	pipe.Expire(ctx, dailyKey, 30*24*time.Hour) // Keep 30 days

	pipe.Incr(ctx, keyPrefix+"global:total")
	pipe.IncrByFloat(ctx, keyPrefix+"global:latency_sum", latencyMs)
	pipe.SAdd(ctx, keyPrefix+"routes", route)

	_, err := pipe.Exec(ctx)
	return err
}

// RecordCatalogError counts a failed catalog call by error kind
func (m *Metrics) RecordCatalogError(ctx context.Context, kind string) error {
	return m.client.HIncrBy(ctx, keyPrefix+"catalog_errors", kind, 1).Err()
}

// GetRouteStats gets statistics for one route
func (m *Metrics) GetRouteStats(ctx context.Context, route string) (*RouteStats, error) {
	result, err := m.client.HGetAll(ctx, keyPrefix+"route:"+route).Result()
	if err != nil {
		return nil, err
	}

	stats := &RouteStats{Route: route}
	if len(result) == 0 {
		return stats, nil
	}

	stats.TotalCalls, _ = strconv.ParseInt(result["total"], 10, 64)
	stats.SuccessCalls, _ = strconv.ParseInt(result["success"], 10, 64)
	stats.ErrorCalls, _ = strconv.ParseInt(result["error"], 10, 64)
	latencySum, _ := strconv.ParseFloat(result["latency_sum"], 64)
	if stats.TotalCalls > 0 {
		stats.AvgLatencyMs = latencySum / float64(stats.TotalCalls)
	}
	return stats, nil
}

// GetOverallStats gets overall service statistics
func (m *Metrics) GetOverallStats(ctx context.Context) (*OverallStats, error) {
	stats := &OverallStats{CatalogErrors: map[string]int64{}}

	total, _ := m.client.Get(ctx, keyPrefix+"global:total").Int64()
	latencySum, _ := m.client.Get(ctx, keyPrefix+"global:latency_sum").Float64()
	stats.TotalCalls = total
	if total > 0 {
		stats.AvgLatencyMs = latencySum / float64(total)
	}

	today := time.Now().Format("2006-01-02")
	stats.TodayCalls, _ = m.client.HGet(ctx, keyPrefix+"daily:"+today, "total").Int64()

	routes, err := m.client.SMembers(ctx, keyPrefix+"routes").Result()
	if err != nil {
		return nil, err
	}
	var all []RouteStats
	var errorsTotal int64
	for _, route := range routes {
		rs, err := m.GetRouteStats(ctx, route)
		if err == nil && rs.TotalCalls > 0 {
			all = append(all, *rs)
			errorsTotal += rs.ErrorCalls
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].TotalCalls > all[j].TotalCalls
	})
	if len(all) > 10 {
		all = all[:10]
	}
	stats.TopRoutes = all

	if total > 0 {
		stats.ErrorRate = float64(errorsTotal) / float64(total) * 100
	}

	kinds, _ := m.client.HGetAll(ctx, keyPrefix+"catalog_errors").Result()
	for kind, v := range kinds {
		n, _ := strconv.ParseInt(v, 10, 64)
		stats.CatalogErrors[kind] = n
	}

	stats.DailyTrend = m.getDailyTrend(ctx, 7)

	if start, err := m.client.Get(ctx, keyPrefix+"server:start_time").Int64(); err == nil && start > 0 {
		stats.Uptime = time.Now().Unix() - start
	}

	return stats, nil
}

// getDailyTrend gets daily statistics for the last N days
func (m *Metrics) getDailyTrend(ctx context.Context, days int) []DailyStats {
	var trend []DailyStats

	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		result, err := m.client.HGetAll(ctx, keyPrefix+"daily:"+date).Result()
		if err != nil {
			continue
		}

		total, _ := strconv.ParseInt(result["total"], 10, 64)
		latencySum, _ := strconv.ParseFloat(result["latency_sum"], 64)
		avg := 0.0
		if total > 0 {
			avg = latencySum / float64(total)
		}
		trend = append(trend, DailyStats{Date: date, TotalCalls: total, AvgLatency: avg})
	}

	return trend
}

// RecordServerStart records server start time
func (m *Metrics) RecordServerStart(ctx context.Context) {
	m.client.Set(ctx, keyPrefix+"server:start_time", time.Now().Unix(), 0)
}

// ResetMetrics deletes every metrics key
func (m *Metrics) ResetMetrics(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := m.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := m.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the Redis connection
func (m *Metrics) Close() error {
	return m.client.Close()
}
