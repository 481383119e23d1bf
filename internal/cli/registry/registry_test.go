package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/urfave/cli/v3"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(_ *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{Name: m.name}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	translations, err := i18n.NewTranslations()
	require.NoError(t, err)
	return NewRegistry(config.Default(), translations)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register new factory successfully", func(t *testing.T) {
		// Arrange
		registry := newTestRegistry(t)

		// Act
		err := registry.Register("serve", &mockCommandFactory{name: "serve"})

		// Assert
		assert.NoError(t, err)
		assert.Contains(t, registry.factories, "serve")
	})

	t.Run("should return error when registering duplicate factory", func(t *testing.T) {
		// Arrange
		registry := newTestRegistry(t)
		_ = registry.Register("serve", &mockCommandFactory{name: "serve"})

		// Act
		err := registry.Register("serve", &mockCommandFactory{name: "serve"})

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "serve")
		assert.Len(t, registry.factories, 1)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	t.Run("should create commands ordered by name", func(t *testing.T) {
		// Arrange
		registry := newTestRegistry(t)
		_ = registry.Register("serve", &mockCommandFactory{name: "serve"})
		_ = registry.Register("doctor", &mockCommandFactory{name: "doctor"})
		_ = registry.Register("costs", &mockCommandFactory{name: "costs"})

		// Act
		commands := registry.CreateCommands()

		// Assert
		require.Len(t, commands, 3)
		assert.Equal(t, "costs", commands[0].Name)
		assert.Equal(t, "doctor", commands[1].Name)
		assert.Equal(t, "serve", commands[2].Name)
	})

	t.Run("should return empty slice when no factories registered", func(t *testing.T) {
		registry := newTestRegistry(t)

		assert.Empty(t, registry.CreateCommands())
	})
}
