package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzersFromEmbeddedConfig(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Staticcheck)

	names := map[string]bool{}
	for _, analyzer := range analyzers(cfg) {
		names[analyzer.Name] = true
	}

	for _, expected := range []string{"noexitinmain", "ineffassign", "nilerr", "printf", "SA4006"} {
		assert.True(t, names[expected], expected)
	}
	assert.False(t, names["SA4000"])
}

func TestAnalyzersWithoutStaticcheck(t *testing.T) {
	for _, analyzer := range analyzers(ConfigData{}) {
		assert.NotRegexp(t, `^SA\d+$`, analyzer.Name)
	}
}
