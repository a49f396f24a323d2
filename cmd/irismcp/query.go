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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irismcp/internal/contract"
	"github.com/kraklabs/irismcp/internal/errors"
	"github.com/kraklabs/irismcp/internal/output"
	"github.com/kraklabs/irismcp/pkg/tools"
)

// runQuery executes the 'query' CLI command, running a read-only SQL
// statement and printing the rows as a markdown table or JSON.
//
// Flags:
//   - --json: Output the result rows as JSON (default: false)
//   - --namespace: Namespace to query (default: configured namespace)
//   - --param: Value for a ? placeholder, repeatable
//   - --timeout: Overall command timeout (default: 30s)
//
// Examples:
//
//	irismcp query "SELECT TOP 5 Name FROM %Dictionary.ClassDefinition"
//	irismcp query "SELECT Name FROM Sample.Person WHERE Age > ?" --param 40
//	irismcp query "SELECT 1 AS one" --json
func runQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	namespace := fs.StringP("namespace", "n", "", "Namespace (default: configured namespace)")
	params := fs.StringArrayP("param", "p", nil, "Value for a ? placeholder (repeatable, JSON scalars allowed)")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: irismcp query [options] <sql>

Runs a read-only SQL statement (SELECT or WITH) against IRIS.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # List some classes
  irismcp query "SELECT TOP 10 Name FROM %%Dictionary.ClassDefinition"

  # Use placeholders
  irismcp query "SELECT Name FROM Sample.Person WHERE Age > ?" --param 40

  # Another namespace, JSON output
  irismcp query -n %%SYS "SELECT TOP 3 Name FROM Security.Users" --json

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: sql argument required\n")
		fs.Usage()
		os.Exit(1)
	}
	sql := strings.TrimSpace(strings.Join(fs.Args(), " "))

	if v := contract.ValidateQuery(sql); !v.OK {
		errors.FatalError(errors.NewInputError(
			"Query rejected",
			v.Message,
			"irismcp only runs read-only statements; rewrite it as a SELECT or WITH",
		), *jsonOutput || globals.JSON)
	}

	values := make([]any, 0, len(*params))
	for _, p := range *params {
		values = append(values, parseParam(p))
	}

	cfg := loadConfig(globals)
	logger := cliLogger(cfg, globals)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	session := connect(ctx, cfg, globals, logger)
	defer session.Close()

	if *jsonOutput {
		ns := *namespace
		if ns == "" {
			ns = session.Client.DefaultNamespace()
		}
		payload, err := session.Client.Query(ctx, ns, sql, values)
		if err != nil {
			session.Close()
			errors.FatalError(remoteError(err, session.Client.Target(), ns), true)
		}
		if err := output.JSON(tools.ExtractQueryContent(payload)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(errors.ExitInternal)
		}
		return
	}

	res, err := tools.ExecuteSQL(ctx, session.Client, tools.ExecuteSQLArgs{
		Query:      sql,
		Namespace:  *namespace,
		Parameters: values,
	})
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	printToolResult(res)
}
