package version

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	appversion "github.com/thomas-vilte/mateticket/internal/version"
)

func TestVersionCommand(t *testing.T) {
	// Arrange
	translations, err := i18n.NewTranslations()
	require.NoError(t, err)
	var buf bytes.Buffer
	c := &VersionCommand{out: &buf}
	cmd := c.CreateCommand(translations, config.Default())

	// Act
	err = cmd.Run(context.Background(), []string{"version"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Print the version", cmd.Usage)
	assert.Equal(t, "mateticket v"+appversion.Version+"\n", buf.String())
}
