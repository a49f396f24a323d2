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
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irismcp/internal/errors"
	"github.com/kraklabs/irismcp/internal/output"
	"github.com/kraklabs/irismcp/pkg/tools"
)

// runDoc executes the 'doc' CLI command, printing the source of a class or
// routine. Names are resolved the same way as the iris_get_document tool.
//
// Flags:
//   - --namespace: Namespace to read from (default: configured namespace)
//   - --markdown: Print the tool's markdown rendering instead of raw source
//   - --timeout: Overall command timeout (default: 30s)
//
// Examples:
//
//	irismcp doc %Library.String.cls
//	irismcp doc MyApp.Utils --markdown
func runDoc(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("doc", flag.ExitOnError)
	namespace := fs.StringP("namespace", "n", "", "Namespace (default: configured namespace)")
	markdown := fs.Bool("markdown", false, "Print the markdown rendering used by the MCP tool")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: irismcp doc [options] <name>

Prints the source of a class or routine.

Name resolution:
  Pkg.Class.cls   tried as Pkg.Class.1.int, then Pkg.Class.int
  Foo.int|mac|inc used as given
  Pkg.Name        tried as Pkg.Name.1.int, Pkg.Name.int, then Pkg.Name

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  irismcp doc %%Library.String.cls
  irismcp doc -n %%SYS %%ZSTART.mac
  irismcp doc MyApp.Utils --markdown
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Invalid arguments",
			"The doc command requires exactly one document name",
			"Run 'irismcp doc Package.Class.cls'",
		), globals.JSON)
	}
	name := strings.TrimSpace(fs.Arg(0))

	cfg := loadConfig(globals)
	logger := cliLogger(cfg, globals)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	session := connect(ctx, cfg, globals, logger)
	defer session.Close()
	client := session.Client

	fetcher := &tools.Fetcher{Logger: logger}
	if *markdown {
		res, err := tools.GetDocumentSource(ctx, client, tools.GetDocumentSourceArgs{
			Name:      name,
			Namespace: *namespace,
			Fetcher:   fetcher,
		})
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
		printToolResult(res)
		return
	}

	ns := *namespace
	if ns == "" {
		ns = client.DefaultNamespace()
	}
	fetcher.Target = client.Target()
	fetcher.Namespace = ns

	res := fetcher.Fetch(ctx, tools.ResolveCandidates(name), func(ctx context.Context, candidate string) (*tools.Document, error) {
		return client.GetDocument(ctx, ns, candidate)
	})
	if err := fetchError(res, client.Target(), ns); err != nil {
		session.Close()
		errors.FatalError(err, globals.JSON)
	}
	fmt.Println(res.Document.Text())
}

// fetchError maps a non-found fetch result to a UserError.
func fetchError(res *tools.FetchResult, target, namespace string) error {
	switch res.Status {
	case tools.FetchFound:
		return nil
	case tools.FetchNotFound:
		return errors.NewNotFoundError(
			"Document not found",
			res.Message,
			"Check the name and namespace, or list documents with 'irismcp docs'",
		)
	}
	if res.Err != nil {
		return remoteError(res.Err, target, namespace)
	}
	return errors.NewRemoteError("Document lookup failed", res.Message, "Run with --debug for request details", nil)
}

// runDocs executes the 'docs' CLI command, listing document names.
//
// Flags:
//   - --category: *, CLS, RTN, CSP or OTH (default: *)
//   - --filter: Name filter such as Ens*
//   - --generated: Include generated documents
//   - --namespace: Namespace to list (default: configured namespace)
//   - --json: Output as JSON
func runDocs(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	category := fs.StringP("category", "c", "*", "Category: *, CLS, RTN, CSP or OTH")
	filter := fs.StringP("filter", "f", "", "Name filter (e.g. Ens*)")
	generated := fs.Bool("generated", false, "Include generated documents")
	namespace := fs.StringP("namespace", "n", "", "Namespace (default: configured namespace)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: irismcp docs [options]

Lists document names in a namespace.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  irismcp docs --category CLS --filter "MyApp.*"
  irismcp docs -n %%SYS -c RTN --json
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(globals)
	logger := cliLogger(cfg, globals)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	session := connect(ctx, cfg, globals, logger)
	defer session.Close()

	if !*jsonOutput {
		res, err := tools.ListDocuments(ctx, session.Client, tools.ListDocumentsArgs{
			Category:  *category,
			Filter:    *filter,
			Generated: *generated,
			Namespace: *namespace,
		})
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
		printToolResult(res)
		return
	}

	cat := strings.ToUpper(strings.TrimSpace(*category))
	if cat == "" {
		cat = "*"
	}
	if !slices.Contains(tools.DocCategories, cat) {
		errors.FatalError(errors.NewInputError(
			"Unknown category",
			fmt.Sprintf("Category %q is not one of %s", *category, strings.Join(tools.DocCategories, ", ")),
			"Use --category CLS, RTN, CSP, OTH or *",
		), true)
	}
	ns := *namespace
	if ns == "" {
		ns = session.Client.DefaultNamespace()
	}
	payload, err := session.Client.DocNames(ctx, ns, cat, *filter, *generated)
	if err != nil {
		session.Close()
		errors.FatalError(remoteError(err, session.Client.Target(), ns), true)
	}
	if err := output.JSON(tools.ExtractQueryContent(payload)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.ExitInternal)
	}
}
