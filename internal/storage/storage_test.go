package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/atomicnotes/internal/config"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/filekv"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/memorykv"
	"github.com/patric-chuzhbe/atomicnotes/internal/models"
)

func TestAvailableType(t *testing.T) {
	type tTestCase struct {
		name     string
		cfg      config.Config
		expected int
	}
	testCases := []tTestCase{
		{"postgres wins", config.Config{DatabaseDSN: "dsn", RedisAddress: "localhost:6379", DBFileName: "db.json"}, models.StorageTypePostgresql},
		{"redis before file", config.Config{RedisAddress: "localhost:6379", DBFileName: "db.json"}, models.StorageTypeRedis},
		{"file", config.Config{DBFileName: "db.json"}, models.StorageTypeFile},
		{"memory by default", config.Config{}, models.StorageTypeMemory},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, AvailableType(&testCase.cfg))
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	memory, err := Open(ctx, &config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &memorykv.MemoryKV{}, memory)
	assert.NoError(t, memory.Close())

	file, err := Open(ctx, &config.Config{DBFileName: filepath.Join(t.TempDir(), "kv.json")})
	require.NoError(t, err)
	assert.IsType(t, &filekv.FileKV{}, file)
	assert.NoError(t, file.Ping(ctx))
	assert.NoError(t, file.Close())
}
