// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irismcp/internal/errors"
)

// bashCompletionTemplate is the bash completion script for irismcp.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for irismcp
# Installation:
#   source <(irismcp completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(irismcp completion bash)' >> ~/.bashrc

_irismcp_completion() {
    local cur prev commands
    commands="serve check query doc docs init completion"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [ $COMP_CWORD -eq 1 ]; then
        if [[ ${cur} == -* ]] ; then
            COMPREPLY=( $(compgen -W "--version --mcp --config --debug --no-color --json" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        fi
        return 0
    fi

    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        serve)
            COMPREPLY=( $(compgen -W "--metrics-addr --skip-check" -- ${cur}) )
            ;;
        check)
            COMPREPLY=( $(compgen -W "--json --timeout" -- ${cur}) )
            ;;
        query)
            COMPREPLY=( $(compgen -W "--json --namespace --param --timeout" -- ${cur}) )
            ;;
        doc)
            COMPREPLY=( $(compgen -W "--namespace --markdown --timeout" -- ${cur}) )
            ;;
        docs)
            if [[ ${prev} == "--category" || ${prev} == "-c" ]] ; then
                COMPREPLY=( $(compgen -W "CLS RTN CSP OTH" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -W "--category --filter --generated --namespace --json --timeout" -- ${cur}) )
            fi
            ;;
        init)
            COMPREPLY=( $(compgen -W "--force --yes --base-url --scheme --host --port --username --namespace" -- ${cur}) )
            ;;
        completion)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _irismcp_completion irismcp
`

// zshCompletionTemplate is the zsh completion script for irismcp.
const zshCompletionTemplate = `#compdef irismcp

# Zsh completion script for irismcp
# Installation:
#   irismcp completion zsh > "${fpath[1]}/_irismcp"
#   rm -f ~/.zcompdump; compinit

_irismcp() {
    local -a commands
    commands=(
        'serve:Start the MCP server on stdio'
        'check:Verify connectivity and credentials'
        'query:Run a read-only SQL query'
        'doc:Print the source of a class or routine'
        'docs:List documents in a namespace'
        'init:Create .irismcp/config.yaml'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--mcp[Start as MCP server]' \
        '--config[Path to config file]:config file:_files -g "*.yaml"' \
        '--debug[Enable debug logging]' \
        '--no-color[Disable colored output]' \
        '--json[Print fatal errors as JSON]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                serve)
                    _arguments \
                        '--metrics-addr[Prometheus metrics address]:address:' \
                        '--skip-check[Do not contact IRIS at startup]'
                    ;;
                check)
                    _arguments \
                        '--json[Output as JSON]' \
                        '--timeout[Command timeout]:duration:'
                    ;;
                query)
                    _arguments \
                        '--json[Output as JSON]' \
                        '--namespace[Namespace]:namespace:' \
                        '*--param[Placeholder value]:value:' \
                        '--timeout[Command timeout]:duration:' \
                        '1:sql query:'
                    ;;
                doc)
                    _arguments \
                        '--namespace[Namespace]:namespace:' \
                        '--markdown[Print markdown rendering]' \
                        '--timeout[Command timeout]:duration:' \
                        '1:document name:'
                    ;;
                docs)
                    _arguments \
                        '--category[Category]:category:(CLS RTN CSP OTH)' \
                        '--filter[Name filter]:filter:' \
                        '--generated[Include generated documents]' \
                        '--namespace[Namespace]:namespace:' \
                        '--json[Output as JSON]' \
                        '--timeout[Command timeout]:duration:'
                    ;;
                init)
                    _arguments \
                        '--force[Overwrite existing configuration]' \
                        '--yes[Use defaults]' \
                        '--base-url[Server URL]:url:' \
                        '--scheme[Scheme]:scheme:(http https)' \
                        '--host[Host]:host:_hosts' \
                        '--port[Port]:port:' \
                        '--username[User]:user:' \
                        '--namespace[Namespace]:namespace:'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_irismcp
`

// fishCompletionTemplate is the fish completion script for irismcp.
const fishCompletionTemplate = `# Fish completion script for irismcp
# Installation:
#   irismcp completion fish > ~/.config/fish/completions/irismcp.fish

# Commands
complete -c irismcp -f -n "__fish_use_subcommand" -a "serve" -d "Start the MCP server on stdio"
complete -c irismcp -f -n "__fish_use_subcommand" -a "check" -d "Verify connectivity and credentials"
complete -c irismcp -f -n "__fish_use_subcommand" -a "query" -d "Run a read-only SQL query"
complete -c irismcp -f -n "__fish_use_subcommand" -a "doc" -d "Print the source of a class or routine"
complete -c irismcp -f -n "__fish_use_subcommand" -a "docs" -d "List documents in a namespace"
complete -c irismcp -f -n "__fish_use_subcommand" -a "init" -d "Create .irismcp/config.yaml"
complete -c irismcp -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# Global flags
complete -c irismcp -l version -d "Show version and exit"
complete -c irismcp -l mcp -d "Start as MCP server"
complete -c irismcp -l config -d "Path to config file" -r
complete -c irismcp -l debug -d "Enable debug logging"
complete -c irismcp -l no-color -d "Disable colored output"

# serve
complete -c irismcp -n "__fish_seen_subcommand_from serve" -l metrics-addr -d "Prometheus metrics address" -r
complete -c irismcp -n "__fish_seen_subcommand_from serve" -l skip-check -d "Do not contact IRIS at startup"

# check, query, docs
complete -c irismcp -n "__fish_seen_subcommand_from check query docs" -l json -d "Output as JSON"
complete -c irismcp -n "__fish_seen_subcommand_from check query doc docs" -l timeout -d "Command timeout" -r
complete -c irismcp -n "__fish_seen_subcommand_from query doc docs" -l namespace -d "Namespace" -r
complete -c irismcp -n "__fish_seen_subcommand_from query" -l param -d "Placeholder value" -r
complete -c irismcp -n "__fish_seen_subcommand_from doc" -l markdown -d "Print markdown rendering"
complete -c irismcp -n "__fish_seen_subcommand_from docs" -l category -d "Category" -x -a "CLS RTN CSP OTH"
complete -c irismcp -n "__fish_seen_subcommand_from docs" -l filter -d "Name filter" -r
complete -c irismcp -n "__fish_seen_subcommand_from docs" -l generated -d "Include generated documents"

# init
complete -c irismcp -n "__fish_seen_subcommand_from init" -l force -d "Overwrite existing configuration"
complete -c irismcp -n "__fish_seen_subcommand_from init" -l yes -d "Use defaults"
complete -c irismcp -n "__fish_seen_subcommand_from init" -l base-url -d "Server URL" -r
complete -c irismcp -n "__fish_seen_subcommand_from init" -l host -d "Host" -r
complete -c irismcp -n "__fish_seen_subcommand_from init" -l port -d "Port" -r

# completion
complete -c irismcp -n "__fish_seen_subcommand_from completion" -f -a "bash zsh fish"
`

// completionScript returns the completion script for shell.
func completionScript(shell string) (string, bool) {
	switch shell {
	case "bash":
		return bashCompletionTemplate, true
	case "zsh":
		return zshCompletionTemplate, true
	case "fish":
		return fishCompletionTemplate, true
	}
	return "", false
}

// runCompletion executes the 'completion' CLI command, printing a shell
// completion script for bash, zsh or fish.
//
// Examples:
//
//	source <(irismcp completion bash)
//	irismcp completion zsh > "${fpath[1]}/_irismcp"
//	irismcp completion fish | source
func runCompletion(args []string) {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: irismcp completion <shell>

Description:
  Generate shell completion scripts for bash, zsh, or fish.

Arguments:
  shell    Shell type: bash, zsh, or fish (required)

Examples:
  source <(irismcp completion bash)
  irismcp completion zsh > "${fpath[1]}/_irismcp"
  irismcp completion fish > ~/.config/fish/completions/irismcp.fish

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'irismcp completion bash', 'irismcp completion zsh', or 'irismcp completion fish'",
		), false)
	}

	script, ok := completionScript(fs.Arg(0))
	if !ok {
		errors.FatalError(errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", fs.Arg(0)),
			"Run 'irismcp completion bash', 'irismcp completion zsh', or 'irismcp completion fish'",
		), false)
	}
	fmt.Print(script)
}
