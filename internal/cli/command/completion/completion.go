package completion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `#! /bin/bash

_mateticket_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    
    # Construct the command line with previous words and append the completion flag
    # We strip the current word being completed (index COMP_CWORD) to ask for suggestions based on the context so far
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _mateticket_bash_autocomplete mateticket
`

const zshCompletionScript = `#compdef mateticket

_mateticket() {
  local -a opts
  # Zsh array slicing: 1 to CURRENT-1 (all words before the one under cursor)
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _mateticket mateticket
`

const installInfo = `
# mateticket shell completion
if command -v mateticket >/dev/null 2>&1; then
	source <(mateticket completion %s)
fi
`

func NewCompletionCommand(t *i18n.Translations, language string) *cli.Command {
	loc := t.Localizer(language)
	return &cli.Command{
		Name:        "completion",
		Usage:       i18n.GetMessage(loc, "completion_command_usage", 0, nil),
		Description: i18n.GetMessage(loc, "completion_command_description", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "bash",
				Usage: i18n.GetMessage(loc, "completion_bash_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Print(bashCompletionScript)
					return nil
				},
			},
			{
				Name:  "zsh",
				Usage: i18n.GetMessage(loc, "completion_zsh_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Print(zshCompletionScript)
					return nil
				},
			},
			{
				Name:  "install",
				Usage: i18n.GetMessage(loc, "completion_install_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					home, err := os.UserHomeDir()
					if err != nil {
						return fmt.Errorf("%s", i18n.GetMessage(loc, "completion_error_home_dir", 0, map[string]interface{}{"Error": err.Error()}))
					}
					return install(os.Stdout, loc, home, os.Getenv("SHELL"))
				},
			},
		},
	}
}

// install appends the completion loader to the rc file of shell, once.
func install(w io.Writer, loc *goi18n.Localizer, home, shell string) error {
	var configFile string
	var shellName string

	if strings.Contains(shell, "zsh") {
		configFile = filepath.Join(home, ".zshrc")
		shellName = "zsh"
	} else if strings.Contains(shell, "bash") {
		configFile = filepath.Join(home, ".bashrc")
		shellName = "bash"
	} else {
		return fmt.Errorf("%s", i18n.GetMessage(loc, "completion_error_unsupported_shell", 0, map[string]interface{}{"Shell": shell}))
	}

	content := fmt.Sprintf(installInfo, shellName)

	fileContent, err := os.ReadFile(configFile)
	if err == nil && strings.Contains(string(fileContent), "# mateticket shell completion") {
		_, _ = fmt.Fprintln(w, i18n.GetMessage(loc, "completion_already_installed", 0, map[string]interface{}{"File": configFile}))
		_, _ = fmt.Fprintln(w, i18n.GetMessage(loc, "completion_restart_shell", 0, nil))
		_, _ = fmt.Fprintf(w, "  source %s\n", configFile)
		return nil
	}

	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("%s", i18n.GetMessage(loc, "completion_error_open_config", 0, map[string]interface{}{"Error": err.Error()}))
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("%s", i18n.GetMessage(loc, "completion_error_write_config", 0, map[string]interface{}{"Error": err.Error()}))
	}

	_, _ = fmt.Fprintln(w, i18n.GetMessage(loc, "completion_installed_success", 0, map[string]interface{}{"File": configFile}))
	_, _ = fmt.Fprintln(w, i18n.GetMessage(loc, "completion_restart_shell", 0, nil))
	_, _ = fmt.Fprintf(w, "  source %s\n", configFile)
	return nil
}
