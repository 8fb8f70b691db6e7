package main

import (
	"time"

	"github.com/core-coin/cipctl/collection"
	"github.com/core-coin/cipctl/document"
	"github.com/core-coin/cipctl/identity"
	"github.com/spf13/cobra"
)

// authorKey is the metadata field listing a proposal's authors.
const authorKey = "author"

func newAuthorsCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "authors",
		Short: "Resolve the authors of every proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, g)
			if err != nil {
				return err
			}
			coll, err := collection.NewFS(cfg.Collection.Root, cfg.Collection.Patterns...)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ids, err := coll.List(ctx)
			if err != nil {
				return err
			}

			// Authors repeat across proposals.
			resolver := identity.NewCachedResolver(nil, 10*time.Minute, time.Minute)
			var out []resolvedContributor
			for _, id := range ids {
				content, err := coll.Read(ctx, id)
				if err != nil {
					logger.Warn("Skipping document", "id", id, "error", err)
					continue
				}
				doc, err := document.Parse(content)
				if err != nil {
					logger.Warn("Skipping document", "id", id, "error", err)
					continue
				}
				for _, field := range doc.Metadata.Strings(authorKey) {
					for _, raw := range identity.SplitContributors(field) {
						out = append(out, resolvedContributor{
							Document: id,
							Input:    raw,
							Identity: resolver.Resolve(raw),
						})
					}
				}
			}
			logger.Debug("Resolved authors", "documents", len(ids), "contributors", len(out), "distinct", resolver.Len())
			if out == nil {
				out = []resolvedContributor{}
			}
			return writeContributors(cmd.OutOrStdout(), out, asJSON, true)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
