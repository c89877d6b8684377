// Package storage picks the key-value backend the configuration asks for.
package storage

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/atomicnotes/internal/config"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/filekv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/memorykv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/pgkv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/rediskv"
	"github.com/patric-chuzhbe/atomicnotes/internal/models"
)

// RedisKeyPrefix keeps the keys of the site apart from other tenants of a shared Redis.
const RedisKeyPrefix = "atomicnotes:"

// AvailableType returns the first configured backend in the order
// PostgreSQL, Redis, file, memory.
func AvailableType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.RedisAddress != "" {
		return models.StorageTypeRedis
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

// Open connects the backend returned by AvailableType.
func Open(ctx context.Context, cfg *config.Config) (kv.Namespace, error) {
	switch AvailableType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return pgkv.New(ctx, cfg.DatabaseDSN, cfg.DBConnectionTimeout)

	case models.StorageTypeRedis:
		return rediskv.New(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, RedisKeyPrefix)

	case models.StorageTypeFile:
		return filekv.New(cfg.DBFileName)
	}

	return memorykv.New(), nil
}
