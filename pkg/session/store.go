package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/beam-cloud/mailtriage/pkg/common"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

const defaultMaxEntries = 1024

// Data is the server-side state of one browser session
type Data struct {
	State string        `json:"state,omitempty"`
	Token *oauth2.Token `json:"token,omitempty"`
}

// Authorized returns true once a Gmail token has been stored
func (d *Data) Authorized() bool {
	return d != nil && d.Token != nil && (d.Token.AccessToken != "" || d.Token.RefreshToken != "")
}

// Store persists session data by session id. Get returns
// types.ErrSessionNotFound for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
}

// NewStore returns the store selected by config
func NewStore(cfg types.SessionConfig, rdb *common.RedisClient) (Store, error) {
	if cfg.UsesRedis() {
		if rdb == nil {
			return nil, fmt.Errorf("session store %q requires redis", cfg.Store)
		}
		return NewRedisStore(rdb, cfg.TTL), nil
	}
	return NewMemoryStore(cfg.MaxEntries, cfg.TTL), nil
}

// MemoryStore keeps sessions in a size-bounded LRU with per-entry expiry
type MemoryStore struct {
	cache *expirable.LRU[string, Data]
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, Data](maxEntries, nil, ttl),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Data, error) {
	data, ok := s.cache.Get(id)
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return &data, nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, data *Data) error {
	s.cache.Add(id, *data)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}

// RedisStore keeps sessions as JSON values with a TTL
type RedisStore struct {
	rdb *common.RedisClient
	ttl time.Duration
}

func NewRedisStore(rdb *common.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.rdb.Get(ctx, common.Keys.SessionData(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, common.Keys.SessionData(id), raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, common.Keys.SessionData(id)).Err()
}
