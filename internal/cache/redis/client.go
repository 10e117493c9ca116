package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/pkg/logger"
)

// Client memoizes expensive evaluation results and caches generated reports.
// The interview itself is never cached here; SQLite stays the source of truth.
type Client struct {
	client  *redis.Client
	evalTTL time.Duration
}

func NewClient(host string, port int, password string, db int, evalTTL time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, evalTTL: evalTTL}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetEvaluation memoizes one grading result by answer hash.
func (c *Client) SetEvaluation(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("eval:%s", key), data, c.evalTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set evaluation cache: %w", err)
	}

	logger.Debug("Evaluation cached", zap.String("key", key), zap.Duration("ttl", c.evalTTL))
	return nil
}

// GetEvaluation reports (false, nil) on a clean miss.
func (c *Client) GetEvaluation(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("eval:%s", key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get evaluation cache: %w", err)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}

	logger.Debug("Evaluation cache hit", zap.String("key", key))
	return true, nil
}

// SetReport caches a rendered report until the interview is re-evaluated.
func (c *Client) SetReport(ctx context.Context, interviewID int64, report any, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("report:%d", interviewID), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set report cache: %w", err)
	}

	return nil
}

func (c *Client) GetReport(ctx context.Context, interviewID int64, out any) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("report:%d", interviewID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report cache: %w", err)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return true, nil
}

// InvalidateReport drops a cached report after regeneration.
func (c *Client) InvalidateReport(ctx context.Context, interviewID int64) error {
	return c.client.Del(ctx, fmt.Sprintf("report:%d", interviewID)).Err()
}
