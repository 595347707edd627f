package common

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

var ErrRedisNotConfigured = errors.New("redis not configured")

// RedisClient wraps a single-node or cluster client behind redis.UniversalClient
type RedisClient struct {
	redis.UniversalClient
}

type RedisOption func(*redis.UniversalOptions)

func WithClientName(name string) RedisOption {
	return func(opts *redis.UniversalOptions) {
		opts.ClientName = name
	}
}

// NewRedisClient connects and pings; it fails fast on an unreachable server
func NewRedisClient(config types.RedisConfig, options ...RedisOption) (*RedisClient, error) {
	if !config.IsConfigured() {
		return nil, ErrRedisNotConfigured
	}

	opts := &redis.UniversalOptions{
		Addrs:           config.Addrs,
		Username:        config.Username,
		Password:        config.Password,
		ClientName:      config.ClientName,
		PoolSize:        config.PoolSize,
		MinIdleConns:    config.MinIdleConns,
		MaxIdleConns:    config.MaxIdleConns,
		ConnMaxIdleTime: config.ConnMaxIdleTime,
		ConnMaxLifetime: config.ConnMaxLifetime,
		DialTimeout:     config.DialTimeout,
		ReadTimeout:     config.ReadTimeout,
		WriteTimeout:    config.WriteTimeout,
		MaxRedirects:    config.MaxRedirects,
		MaxRetries:      config.MaxRetries,
		RouteByLatency:  config.RouteByLatency,
	}
	if config.EnableTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: config.InsecureSkipVerify}
	}
	for _, opt := range options {
		opt(opts)
	}

	var client redis.UniversalClient
	if config.Mode == types.RedisModeCluster {
		client = redis.NewClusterClient(opts.Cluster())
	} else {
		client = redis.NewClient(opts.Simple())
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisClient{UniversalClient: client}, nil
}
