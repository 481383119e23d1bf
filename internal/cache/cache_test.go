package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomas-vilte/mateticket/internal/config"
)

func TestKey(t *testing.T) {
	// Act
	k1 := Key("triage", "VPN down", "cannot connect", "basic")
	k2 := Key("triage", "VPN down", "cannot connect", "basic")
	k3 := Key("triage", "VPN down", "cannot connect", "premium")

	// Assert
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.True(t, strings.HasPrefix(k1, "triage:"))
	assert.Len(t, strings.TrimPrefix(k1, "triage:"), 32)
}

func TestKey_SeparatorMatters(t *testing.T) {
	assert.NotEqual(t, Key("p", "ab", "c"), Key("p", "a", "bc"))
}

func TestGenerateHash(t *testing.T) {
	h1 := GenerateHash("content")
	h2 := GenerateHash("content")
	h3 := GenerateHash("other")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestNew(t *testing.T) {
	t.Run("memory when redis is not configured", func(t *testing.T) {
		cfg := config.Default()

		store := New(context.Background(), cfg)

		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("memory when redis is unreachable", func(t *testing.T) {
		// Arrange
		cfg := config.Default()
		cfg.Redis.Host = "127.0.0.1"
		cfg.Redis.Port = 1

		// Act
		store := New(context.Background(), cfg)

		// Assert
		assert.IsType(t, &MemoryStore{}, store)
	})
}
