package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/pipeline"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	formats      string // comma-separated output formats
	output       string // output file (single format) or base path
	depth        int    // edges followed from the start set
	maxNodes     int    // resolved node cap
	seed         uint64 // layout seed
	detailed     bool   // commit subjects in node labels
	frontier     bool   // draw unexpanded edge targets
	followHidden bool   // follow index edges
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [ids...]",
		Short: "Walk a subgraph and write it as JSON, DOT, or SVG",
		Long: `Walk the object graph breadth-first from the given identifiers (every root
when none are given) and write the result.

With a single format and no --output, the artifact is written to stdout.
With several formats, --output is a base path and each format gets its own
extension.

Defaults for every flag come from the [export] section of the config file.`,
		Example: `  gitscope export HEAD --depth 3 -f svg -o head.svg
  gitscope export index --follow-hidden -f json,dot -o staging`,
		ValidArgsFunction: c.completeIdentifiers,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVar(&opts.depth, "depth", pipeline.DefaultMaxDepth, "edges followed from the start set (-1 for unlimited)")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", pipeline.DefaultMaxNodes, "maximum resolved nodes (-1 for unlimited)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", pipeline.DefaultSeed, "layout seed (any value, including 0)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include commit subjects in labels")
	cmd.Flags().BoolVar(&opts.frontier, "frontier", false, "draw edge targets that were not expanded")
	cmd.Flags().BoolVar(&opts.followHidden, "follow-hidden", false, "follow hidden edges (index entries)")

	return cmd
}

// pipelineOptions merges config defaults with explicitly set flags.
func (c *CLI) pipelineOptions(cmd *cobra.Command, args []string, opts exportOpts) (pipeline.Options, error) {
	start, err := parseIdentifiers(args)
	if err != nil {
		return pipeline.Options{}, err
	}
	po := c.config.PipelineOptions(start)

	flags := cmd.Flags()
	if flags.Changed("format") {
		po.Formats = parseFormats(opts.formats)
	}
	if flags.Changed("depth") {
		po.MaxDepth = opts.depth
	}
	if flags.Changed("max-nodes") {
		po.MaxNodes = opts.maxNodes
	}
	if flags.Changed("seed") {
		po.Seed = opts.seed
	}
	if flags.Changed("detailed") {
		po.Detailed = opts.detailed
	}
	if flags.Changed("frontier") {
		po.Frontier = opts.frontier
	}
	if flags.Changed("follow-hidden") {
		po.FollowHidden = opts.followHidden
	}

	if err := po.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	if len(po.Formats) > 1 && opts.output == "" {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "--output is required with more than one format")
	}
	return po, nil
}

func (c *CLI) runExport(cmd *cobra.Command, args []string, opts exportOpts) error {
	ctx := cmd.Context()
	po, err := c.pipelineOptions(cmd, args, opts)
	if err != nil {
		return err
	}

	engine, closeFn, err := c.openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	po.Logger = loggerFromContext(ctx)
	runner := pipeline.NewRunner(engine, po.Logger)

	if opts.output == "" {
		result, err := runner.Execute(ctx, po)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(result.Artifacts[po.Formats[0]])
		return err
	}

	prog := newProgress(po.Logger)
	spinner := newSpinner(ctx, "Walking object graph...")
	spinner.Start()

	result, err := runner.Execute(ctx, po)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Exported %d nodes", result.Stats.NodeCount))

	paths, err := writeArtifacts(result.Artifacts, po.Formats, opts.output)
	if err != nil {
		return err
	}

	printSuccess("Exported %s", StyleHighlight.Render(strings.Join(po.Formats, ", ")))
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Failures)
	for _, p := range paths {
		printFile(p)
	}
	if result.Stats.Failures > 0 {
		printWarning("%d identifiers could not be resolved (see the failures in the output)", result.Stats.Failures)
	}
	return nil
}

// writeArtifacts writes one file per format and returns the paths written.
// With a single format, output is used as-is when it has an extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := artifactPath(output, format, len(formats))
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath derives the file name for format from the --output value.
func artifactPath(output, format string, count int) string {
	ext := filepath.Ext(output)
	if count == 1 && ext != "" {
		return output
	}
	return strings.TrimSuffix(output, ext) + "." + format
}
