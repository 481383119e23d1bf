package version

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	appversion "github.com/thomas-vilte/mateticket/internal/version"
	"github.com/urfave/cli/v3"
)

type VersionCommand struct {
	out io.Writer
}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{out: os.Stdout}
}

func (c *VersionCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	loc := t.Localizer(cfg.Language)
	return &cli.Command{
		Name:  "version",
		Usage: i18n.GetMessage(loc, "version_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(c.out, i18n.GetMessage(loc, "version_output", 0, map[string]interface{}{
				"Version": appversion.FullVersion(),
			}))
			return err
		},
	}
}
