package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/thomas-vilte/mateticket/internal/cli/command/completion"
	"github.com/thomas-vilte/mateticket/internal/cli/command/doctor"
	"github.com/thomas-vilte/mateticket/internal/cli/command/serve"
	"github.com/thomas-vilte/mateticket/internal/cli/command/stats"
	versioncmd "github.com/thomas-vilte/mateticket/internal/cli/command/version"
	"github.com/thomas-vilte/mateticket/internal/cli/registry"
	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/ui"
	"github.com/thomas-vilte/mateticket/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, error) {
	cfgApp, err := config.Load("")
	if err != nil {
		return nil, err
	}

	logger.Initialize(cfgApp.Debug, true, cfgApp.LogFormat)

	translations, err := i18n.NewTranslations()
	if err != nil {
		log.Fatalf("error loading translations: %v", err)
	}
	loc := translations.Localizer(cfgApp.Language)

	registerCommand := registry.NewRegistry(cfgApp, translations)

	for name, factory := range map[string]registry.CommandFactory{
		"serve":   serve.NewServeCommand(),
		"doctor":  doctor.NewDoctorCommand(),
		"stats":   stats.NewStatsCommand(),
		"version": versioncmd.NewVersionCommand(),
	} {
		if err := registerCommand.Register(name, factory); err != nil {
			return nil, fmt.Errorf("error registering command %q: %w", name, err)
		}
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, completion.NewCompletionCommand(translations, cfgApp.Language))

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   i18n.GetMessage(loc, "help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:                  "mateticket",
		Usage:                 i18n.GetMessage(loc, "app_usage", 0, nil),
		Version:               version.Version,
		Description:           i18n.GetMessage(loc, "app_description", 0, nil),
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}
