package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/store"
)

// rootsCommand creates the roots command.
func (c *CLI) rootsCommand() *cobra.Command {
	var allObjects, asJSON bool

	cmd := &cobra.Command{
		Use:   "roots",
		Short: "List the graph's starting points",
		Long: `List the graph's starting points: HEAD, the staging index, and every
reference. With --all-objects, every object in the repository is listed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoots(cmd.Context(), cmd.OutOrStdout(), allObjects, asJSON)
		},
	}

	cmd.Flags().BoolVar(&allObjects, "all-objects", false, "include every object in the repository")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runRoots(ctx context.Context, w io.Writer, allObjects, asJSON bool) error {
	engine, closeFn, err := c.openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	var roots ident.Set
	if allObjects {
		roots, err = engine.RootsWithObjects(ctx)
	} else {
		roots, err = engine.Roots(ctx)
	}
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("listed roots", "count", roots.Len(), "all_objects", allObjects)

	sorted := roots.Sorted()
	if asJSON {
		return writeJSON(w, struct {
			Roots []ident.Identifier `json:"roots"`
		}{sorted})
	}
	for _, id := range sorted {
		fmt.Fprintln(w, id)
	}
	return nil
}

// nodeCommand creates the node command.
func (c *CLI) nodeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "node <id>",
		Short: "Show one node and its outgoing edges",
		Long: `Show one node and its outgoing edges.

The id is "ref:<name>", "index", or "obj:<hash>". A bare 40-character hash,
HEAD, or a name starting with refs/ is also accepted.`,
		Example: `  gitscope node HEAD
  gitscope node ref:refs/heads/main
  gitscope node index --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeIdentifiers,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIdentifier(args[0])
			if err != nil {
				return err
			}
			return c.runNode(cmd.Context(), cmd.OutOrStdout(), id, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runNode(ctx context.Context, w io.Writer, id ident.Identifier, asJSON bool) error {
	engine, closeFn, err := c.openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	node, err := engine.BuildNode(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, graph.Document(node))
	}
	writeNode(w, node)
	return nil
}

// indexCommand creates the index command.
func (c *CLI) indexCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "List the staging index entries",
		Long: `List the staging index entries in index order as "<hash> <stage>\t<path>".
Conflicted paths appear once per stage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIndex(cmd.Context(), cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runIndex(ctx context.Context, w io.Writer, asJSON bool) error {
	engine, closeFn, err := c.openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := engine.IndexEntries(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		if entries == nil {
			entries = []store.IndexEntry{}
		}
		return writeJSON(w, struct {
			Entries []store.IndexEntry `json:"entries"`
		}{entries})
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s %d\t%s\n", e.Hash, e.Stage, e.Path)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// completeIdentifiers offers the repository's roots for shell completion.
func (c *CLI) completeIdentifiers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := c.loadConfig(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	engine, closeFn, err := c.openEngine()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer closeFn()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	roots, err := engine.Roots(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	out := make([]string, 0, roots.Len())
	for _, id := range roots.Sorted() {
		out = append(out, id.String())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
