// Package rediskv is a kv.Namespace on top of Redis. Every key is a hash
// with a "value" and a "metadata" field; listing is a SCAN over the prefix,
// so a page may repeat keys and its order is whatever Redis returns.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
)

const (
	fieldValue    = "value"
	fieldMetadata = "metadata"
)

// RedisKV stores entries under keyPrefix + key.
type RedisKV struct {
	client    *redis.Client
	keyPrefix string
}

// New connects to Redis and checks the connection.
func New(ctx context.Context, addr, password string, db int, keyPrefix string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("in internal/kv/rediskv/rediskv.go/New(): error while `client.Ping()` calling: %w", err)
	}

	return NewWithClient(client, keyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, keyPrefix string) *RedisKV {
	return &RedisKV{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (r *RedisKV) Put(ctx context.Context, key string, value []byte, metadata any) error {
	if key == "" {
		return kv.ErrEmptyKey
	}

	rawMetadata, err := kv.EncodeMetadata(metadata)
	if err != nil {
		return err
	}

	if err := r.client.HSet(
		ctx,
		r.keyPrefix+key,
		fieldValue, value,
		fieldMetadata, []byte(rawMetadata),
	).Err(); err != nil {
		return fmt.Errorf("redis hset key=%s error: %w", key, err)
	}

	return nil
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.HGet(ctx, r.keyPrefix+key, fieldValue).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed get value from redis: %w", err)
	}

	return value, true, nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete from redis err: %w", err)
	}

	return nil
}

func (r *RedisKV) List(ctx context.Context, opts kv.ListOptions) (kv.ListResult, error) {
	var cursor uint64
	if opts.Cursor != "" {
		parsed, err := strconv.ParseUint(opts.Cursor, 10, 64)
		if err != nil {
			return kv.ListResult{}, fmt.Errorf("invalid redis cursor %q: %w", opts.Cursor, err)
		}
		cursor = parsed
	}

	match := escapeGlob(r.keyPrefix+opts.Prefix) + "*"
	fullKeys, next, err := r.client.Scan(ctx, cursor, match, int64(opts.EffectiveLimit())).Result()
	if err != nil {
		return kv.ListResult{}, fmt.Errorf("redis scan error: %w", err)
	}

	result := kv.ListResult{
		Keys:         make([]kv.Key, 0, len(fullKeys)),
		ListComplete: next == 0,
	}
	if next != 0 {
		result.Cursor = strconv.FormatUint(next, 10)
	}
	if len(fullKeys) == 0 {
		return result, nil
	}

	pipe := r.client.Pipeline()
	commands := make([]*redis.StringCmd, len(fullKeys))
	for i, fullKey := range fullKeys {
		commands[i] = pipe.HGet(ctx, fullKey, fieldMetadata)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return kv.ListResult{}, fmt.Errorf("redis metadata fetch error: %w", err)
	}

	for i, fullKey := range fullKeys {
		metadata, err := commands[i].Bytes()
		if errors.Is(err, redis.Nil) {
			// Deleted between SCAN and HGET.
			continue
		}
		if err != nil {
			return kv.ListResult{}, fmt.Errorf("redis metadata fetch error: %w", err)
		}
		result.Keys = append(result.Keys, kv.Key{
			Name:     strings.TrimPrefix(fullKey, r.keyPrefix),
			Metadata: metadata,
		})
	}

	return result, nil
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

var globReplacer = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(pattern string) string {
	return globReplacer.Replace(pattern)
}
