package stats

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/services/cost"
	"github.com/thomas-vilte/mateticket/internal/store/postgres"
	"github.com/thomas-vilte/mateticket/internal/ui"
	"github.com/urfave/cli/v3"
)

type storeOpener func(ctx context.Context, dsn string) (cost.ActivityStore, func(), error)

type StatsCommand struct {
	out       io.Writer
	now       func() time.Time
	openStore storeOpener
}

func NewStatsCommand() *StatsCommand {
	return &StatsCommand{
		out:       os.Stdout,
		now:       time.Now,
		openStore: openPostgres,
	}
}

func openPostgres(ctx context.Context, dsn string) (cost.ActivityStore, func(), error) {
	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func (c *StatsCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	loc := t.Localizer(cfg.Language)
	return &cli.Command{
		Name:    "stats",
		Aliases: []string{"costs"},
		Usage:   i18n.GetMessage(loc, "stats_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "monthly",
				Aliases: []string{"m"},
				Usage:   i18n.GetMessage(loc, "stats_monthly_flag", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return c.run(ctx, loc, cfg, cmd.Bool("monthly"))
		},
	}
}

func (c *StatsCommand) run(ctx context.Context, loc *goi18n.Localizer, cfg *config.Config, monthly bool) error {
	if cfg.DatabaseURL == "" {
		ui.PrintWarning(c.out, i18n.GetMessage(loc, "stats_no_database", 0, nil))
		return nil
	}

	store, closeStore, err := c.openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("%s: %w", i18n.GetMessage(loc, "stats_error_init", 0, nil), err)
	}
	defer closeStore()

	if monthly {
		return c.showMonthlyStats(ctx, store, loc)
	}
	return c.showDailyStats(ctx, cost.NewManager(store, cfg.Gemini.BudgetDaily), store, loc)
}

func (c *StatsCommand) showDailyStats(ctx context.Context, manager *cost.Manager, store cost.ActivityStore, loc *goi18n.Localizer) error {
	summary, err := manager.Summary(ctx)
	if err != nil {
		return err
	}
	now := c.now()
	records, err := store.ListActivity(ctx, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()))
	if err != nil {
		return err
	}

	ui.PrintCostSummary(c.out, summary)

	if len(records) == 0 {
		_, _ = fmt.Fprintf(c.out, "%s\n\n", i18n.GetMessage(loc, "stats_no_activity", 0, nil))
		return nil
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	for _, record := range records {
		cacheIndicator := ""
		if record.CacheHit {
			cacheIndicator = green.Sprint(" [CACHE]")
		}
		_, _ = fmt.Fprintf(c.out, "%s - %s (%s): %s%s\n",
			record.Timestamp.In(now.Location()).Format("15:04"),
			record.Command,
			record.Model,
			yellow.Sprintf("$%.4f", record.CostUSD),
			cacheIndicator,
		)
	}
	_, _ = fmt.Fprintln(c.out)
	return nil
}

func (c *StatsCommand) showMonthlyStats(ctx context.Context, store cost.ActivityStore, loc *goi18n.Localizer) error {
	now := c.now()
	records, err := store.ListActivity(ctx, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)
	_, _ = cyan.Fprintf(c.out, "\n%s %s\n", ui.StatsEmoji, i18n.GetMessage(loc, "stats_monthly_title", 0, map[string]interface{}{
		"Month": now.Format("January 2006"),
	}))
	_, _ = fmt.Fprintln(c.out, "━━━━━━━━━━━━━━━━━━━━━━━")

	if len(records) == 0 {
		_, _ = fmt.Fprintf(c.out, "\n%s\n\n", i18n.GetMessage(loc, "stats_no_activity", 0, nil))
		return nil
	}

	var total float64
	dailyTotals := make(map[string]float64)
	for _, record := range records {
		day := record.Timestamp.In(now.Location()).Format(time.DateOnly)
		dailyTotals[day] += record.CostUSD
		total += record.CostUSD
	}
	days := make([]string, 0, len(dailyTotals))
	for day := range dailyTotals {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		_, _ = fmt.Fprintf(c.out, "%s: %s\n", day, yellow.Sprintf("$%.4f", dailyTotals[day]))
	}
	_, _ = fmt.Fprintln(c.out, "━━━━━━━━━━━━━━━━━━━━━━━")
	_, _ = cyan.Fprintf(c.out, "%s: ", i18n.GetMessage(loc, "stats_total_month", 0, nil))
	_, _ = yellow.Fprintf(c.out, "$%.4f USD\n\n", total)
	return nil
}
