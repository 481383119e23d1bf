package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/health"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/infrastructure/di"
	"github.com/thomas-vilte/mateticket/internal/ui"
	"github.com/urfave/cli/v3"
)

var errChecksFailed = errors.New("doctor: one or more checks failed")

type checker interface {
	Check(ctx context.Context) health.Report
}

type DoctorCommand struct {
	out io.Writer
	// newChecker builds the checker from the configuration; replaced in tests.
	newChecker func(ctx context.Context, cfg *config.Config, t *i18n.Translations) (checker, func(), error)
}

func NewDoctorCommand() *DoctorCommand {
	return &DoctorCommand{
		out:        os.Stdout,
		newChecker: containerChecker,
	}
}

func containerChecker(ctx context.Context, cfg *config.Config, t *i18n.Translations) (checker, func(), error) {
	container := di.NewContainer(cfg, t)
	if err := container.Init(ctx); err != nil {
		return nil, nil, err
	}
	c, err := container.GetHealthChecker()
	if err != nil {
		container.Close()
		return nil, nil, err
	}
	return c, container.Close, nil
}

func (d *DoctorCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	loc := t.Localizer(cfg.Language)
	return &cli.Command{
		Name:    "doctor",
		Aliases: []string{"dr"},
		Usage:   i18n.GetMessage(loc, "doctor_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return d.runHealthCheck(ctx, t, loc, cfg)
		},
	}
}

func (d *DoctorCommand) runHealthCheck(ctx context.Context, t *i18n.Translations, loc *goi18n.Localizer, cfg *config.Config) error {
	ui.PrintSectionBanner(d.out, i18n.GetMessage(loc, "doctor_title", 0, nil))

	ui.PrintKeyValue(d.out, "listen", cfg.ListenAddr())
	ui.PrintKeyValue(d.out, "sla_model", cfg.SLAModel)
	ui.PrintKeyValue(d.out, "gemini_model", cfg.Gemini.Model)
	ui.PrintKeyValue(d.out, "ai_enabled", fmt.Sprintf("%t", cfg.AIEnabled()))
	if cfg.Path != "" {
		ui.PrintKeyValue(d.out, "config", cfg.Path)
	}
	_, _ = fmt.Fprintln(d.out)

	started := time.Now()
	spinner := ui.NewSmartSpinner(d.out, i18n.GetMessage(loc, "doctor_checking", 0, map[string]interface{}{
		"Name": "services",
	}))
	spinner.Start()

	c, closeChecker, err := d.newChecker(ctx, cfg, t)
	if err != nil {
		spinner.Stop()
		return err
	}
	defer closeChecker()

	spinner.UpdateMessage(i18n.GetMessage(loc, "doctor_checking", 0, map[string]interface{}{
		"Name": "dependencies",
	}))
	report := c.Check(ctx)
	spinner.Stop()

	failed := 0
	for _, result := range report.Checks {
		data := map[string]interface{}{
			"Name":    result.Name,
			"Latency": time.Duration(result.LatencyMs) * time.Millisecond,
			"Error":   result.Error,
		}
		switch result.Status {
		case health.StatusHealthy:
			ui.PrintSuccess(d.out, i18n.GetMessage(loc, "doctor_ok", 0, data))
		case health.StatusDisabled:
			ui.PrintInfo(d.out, i18n.GetMessage(loc, "doctor_disabled", 0, data))
		default:
			failed++
			ui.PrintError(d.out, i18n.GetMessage(loc, "doctor_failed", 0, data))
		}
	}

	_, _ = fmt.Fprintln(d.out)
	if failed == 0 {
		ui.PrintDuration(d.out, i18n.GetMessage(loc, "doctor_summary_ok", 0, nil), time.Since(started))
		return nil
	}

	ui.PrintWarning(d.out, i18n.GetMessage(loc, "doctor_summary_failed", failed, map[string]interface{}{
		"Count": failed,
	}))
	return errChecksFailed
}
