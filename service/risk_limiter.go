package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRiskLimiter tracks hourly win/loss exposure in expiring redis
// counters. Keys are scoped to the user and the current clock hour, so
// totals reset naturally at the top of each hour.
type redisRiskLimiter struct {
	client *redis.Client
}

// NewRiskLimiter creates a redis-backed risk limiter
func NewRiskLimiter(client *redis.Client) RiskLimiter {
	return &redisRiskLimiter{client: client}
}

// Counters outlive the hour they track by one more hour, then expire.
const riskCounterTTL = 2 * time.Hour

func riskKey(kind string, userID int64) string {
	hour := time.Now().UTC().Format("2006010215")
	return fmt.Sprintf("risk:%s:%d:%s", kind, userID, hour)
}

func (l *redisRiskLimiter) HourlyLoss(ctx context.Context, userID int64) (float64, error) {
	return l.get(ctx, riskKey("loss", userID))
}

func (l *redisRiskLimiter) HourlyWin(ctx context.Context, userID int64) (float64, error) {
	return l.get(ctx, riskKey("win", userID))
}

func (l *redisRiskLimiter) AddLoss(ctx context.Context, userID int64, amount float64) (float64, error) {
	return l.add(ctx, riskKey("loss", userID), amount)
}

func (l *redisRiskLimiter) AddWin(ctx context.Context, userID int64, amount float64) (float64, error) {
	return l.add(ctx, riskKey("win", userID), amount)
}

func (l *redisRiskLimiter) get(ctx context.Context, key string) (float64, error) {
	val, err := l.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read risk counter %s: %w", key, err)
	}

	total, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse risk counter %s: %w", key, err)
	}
	return total, nil
}

func (l *redisRiskLimiter) add(ctx context.Context, key string, amount float64) (float64, error) {
	pipe := l.client.TxPipeline()
	incr := pipe.IncrByFloat(ctx, key, amount)
	pipe.Expire(ctx, key, riskCounterTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to update risk counter %s: %w", key, err)
	}

	return incr.Val(), nil
}
