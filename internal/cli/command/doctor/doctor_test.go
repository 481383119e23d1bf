package doctor

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/health"
	"github.com/thomas-vilte/mateticket/internal/i18n"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func runDoctor(t *testing.T, d *DoctorCommand) (string, error) {
	t.Helper()
	translations, err := i18n.NewTranslations()
	require.NoError(t, err)

	var buf bytes.Buffer
	d.out = &buf
	err = d.runHealthCheck(context.Background(), translations, translations.Localizer("en"), config.Default())
	return buf.String(), err
}

func TestDoctor_InMemoryBackends(t *testing.T) {
	// Act
	out, err := runDoctor(t, NewDoctorCommand())

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "listen: 0.0.0.0:8001")
	assert.Contains(t, out, "gemini: disabled")
	assert.Contains(t, out, "database: disabled")
	assert.Contains(t, out, "cache: ok")
	assert.Contains(t, out, "All checks passed")
}

func TestDoctor_FailedChecks(t *testing.T) {
	// Arrange
	d := NewDoctorCommand()
	d.newChecker = func(context.Context, *config.Config, *i18n.Translations) (checker, func(), error) {
		c := health.NewChecker(
			health.WithCheck("cache", func(context.Context) error { return errors.New("connection refused") }),
			health.WithCheck("database", func(context.Context) error { return errors.New("timeout") }),
			health.WithCheck("triage", func(context.Context) error { return nil }),
		)
		return c, func() {}, nil
	}

	// Act
	out, err := runDoctor(t, d)

	// Assert
	require.ErrorIs(t, err, errChecksFailed)
	assert.Contains(t, out, "cache: connection refused")
	assert.Contains(t, out, "database: timeout")
	assert.Contains(t, out, "2 checks failed")
}

func TestDoctor_CheckerSetupFails(t *testing.T) {
	// Arrange
	d := NewDoctorCommand()
	d.newChecker = func(context.Context, *config.Config, *i18n.Translations) (checker, func(), error) {
		return nil, nil, errors.New("metrics already registered")
	}

	// Act
	out, err := runDoctor(t, d)

	// Assert
	require.EqualError(t, err, "metrics already registered")
	assert.Contains(t, out, "listen: 0.0.0.0:8001")
	assert.NotContains(t, out, "All checks passed")
}
