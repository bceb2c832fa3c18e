// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/codeflow-engine/autopr-desktop/internal/meta"
)

const bashCompletionScript = `# bash completion for autopr
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_autopr()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "greet status config invoke serve console logs completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --filter -f --output -o --titles -t"

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "raw text json yaml" -- "$cur") )
        return 0
    fi

    case "$cmd" in
        greet)
            local opts="$common"
            ;;
        status)
            local opts="$common --interval -i --url -u --watch -w"
            ;;
        config)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "read write get path diff" -- "$cur") )
                return 0
            fi
            case "${COMP_WORDS[2]}" in
                write) local opts="--color -c --diff -d" ;;
                diff)  local opts="--color -c" ;;
                *)     local opts="$common" ;;
            esac
            if [[ "$cur" != -* ]]; then
                COMPREPLY=( $(compgen -f -- "$cur") )
                return 0
            fi
            ;;
        invoke)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "greet get_status read_config write_config" -- "$cur") )
                return 0
            fi
            local opts="--url -u"
            ;;
        serve)
            local opts="--listen -l --url -u"
            ;;
        console)
            local opts="--url -u"
            ;;
        logs)
            local opts="--color -c --grep -g --lines -n --url -u"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _autopr autopr
`

const zshCompletionScript = `#compdef autopr

_autopr() {
  local -a cmds
  cmds=(
    'greet:greet someone'
    'status:fetch the sidecar status'
    'config:read and write the configuration document'
    'invoke:invoke a command by name with JSON arguments'
    'serve:serve the command bridge over local HTTP'
    'console:interactive command console'
    'logs:follow the sidecar log stream'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filter entries]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(raw text json yaml)'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'autopr commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    greet)
      _arguments -C $common '*:name'
      ;;
    status)
      _arguments -C \
        $common \
        '(-i --interval)'{-i,--interval}'[polling interval]:duration' \
        '(-u --url)'{-u,--url}'[status endpoint]:url' \
        '(-w --watch)'{-w,--watch}'[poll until interrupted]'
      ;;
    config)
      if (( CURRENT == 3 )); then
        _values 'config commands' read write get path diff
        return
      fi
      case $words[3] in
        write)
          _arguments -C \
            '(-c --color)'{-c,--color}'[colored diff]' \
            '(-d --diff)'{-d,--diff}'[show changes first]' \
            '::file:_files'
          ;;
        diff)
          _arguments -C '(-c --color)'{-c,--color}'[colored diff]' '::file:_files'
          ;;
        *)
          _arguments -C $common '::key'
          ;;
      esac
      ;;
    invoke)
      _arguments -C \
        '(-u --url)'{-u,--url}'[status endpoint]:url' \
        '1:command:(greet get_status read_config write_config)' \
        '2::arguments'
      ;;
    serve)
      _arguments -C \
        '(-l --listen)'{-l,--listen}'[listen address]:address' \
        '(-u --url)'{-u,--url}'[status endpoint]:url'
      ;;
    console)
      _arguments -C '(-u --url)'{-u,--url}'[status endpoint]:url'
      ;;
    logs)
      _arguments -C \
        '(-c --color)'{-c,--color}'[color records by level]' \
        '(-g --grep)'{-g,--grep}'[only records containing text]:text' \
        '(-n --lines)'{-n,--lines}'[exit after this many records]:count' \
        '(-u --url)'{-u,--url}'[log websocket]:url'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _autopr autopr
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := stdout(cmd)

	shell := cmd.Args().First()
	if shell == "" {
		// Fall back to the login shell.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return errors.New("usage: autopr completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "autopr completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
