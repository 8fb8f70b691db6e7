package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/core-coin/cipctl/identity"
	"github.com/spf13/cobra"
)

// resolvedContributor pairs an input string with its identity.
type resolvedContributor struct {
	Document string `json:"document,omitempty"`
	Input    string `json:"input"`
	identity.Identity
}

func newResolveCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve <contributor>...",
		Short: "Resolve contributor strings to display names and links",
		Example: `  cipctl resolve "Jane Doe <jane@example.com>" @octocat
  cipctl resolve --json "Bob @bob@mastodon.social"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
			resolver := identity.NewResolver()

			out := make([]resolvedContributor, 0, len(args))
			for _, arg := range args {
				id := resolver.Resolve(arg)
				logger.Debug("Resolved contributor", "input", arg, "scheme", id.Scheme)
				out = append(out, resolvedContributor{Input: arg, Identity: id})
			}
			return writeContributors(cmd.OutOrStdout(), out, asJSON, false)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func writeContributors(w io.Writer, list []resolvedContributor, asJSON, withDocument bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	headers := []string{"Input", "Display name", "Link", "Scheme"}
	if withDocument {
		headers = append([]string{"Document"}, headers...)
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		row := []string{c.Input, c.DisplayName, c.Link, string(c.Scheme)}
		if withDocument {
			row = append([]string{c.Document}, row...)
		}
		rows = append(rows, row)
	}
	schemeColumn := len(headers) - 1
	_, err := fmt.Fprintln(w, renderTable(tableView{
		Headers: headers,
		Rows:    rows,
		// Unresolved contributors render without a link.
		Tone: func(row []string) rowTone {
			if schemeColumn < len(row) && row[schemeColumn] == string(identity.SchemeRaw) {
				return toneMuted
			}
			return toneNormal
		},
		Colorize: shouldColorize(w),
	}))
	return err
}
