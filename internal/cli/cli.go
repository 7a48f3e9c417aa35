package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitscope/pkg/buildinfo"
	"github.com/matzehuels/gitscope/pkg/config"
	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/pipeline"
	"github.com/matzehuels/gitscope/pkg/projection"
	"github.com/matzehuels/gitscope/pkg/store/gitstore"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gitscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	repoPath   string
	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "gitscope projects a git repository onto an explorable object graph",
		Long: `gitscope presents the contents of a git repository as a graph of
references, the staging index, and objects (commits, trees, tags, blobs).
Nodes are resolved on demand, so exploring a large repository only touches
the part of the graph you look at.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVarP(&c.repoPath, "repo", "C", ".", "path to the git repository")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gitscope/config.toml)")

	// Register all subcommands
	root.AddCommand(c.rootsCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies it under any explicitly set
// global flags.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	if !cmd.Flags().Changed("repo") {
		c.repoPath = cfg.Repo
	}
	c.Logger.Debug("loaded config", "repo", c.repoPath, "path", c.configPath)
	return nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// openEngine opens the repository and returns an engine over it. The caller
// must call the returned close function.
func (c *CLI) openEngine() (*projection.Engine, func(), error) {
	s, err := gitstore.Open(c.repoPath)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("opened repository", "path", s.Path())

	closeFn := func() {
		if err := s.Close(); err != nil {
			c.Logger.Warn("close repository", "err", err)
		}
	}
	return projection.New(s, projection.WithLogger(c.Logger)), closeFn, nil
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseIdentifier accepts the external identifier encoding plus two
// shorthands: a bare 40-character hash and a bare reference name that is
// HEAD or starts with refs/.
func parseIdentifier(s string) (ident.Identifier, error) {
	id, err := ident.Parse(s)
	if err == nil {
		return id, nil
	}
	if errors.ValidateHash(s) == nil {
		return ident.Object(s), nil
	}
	if (s == "HEAD" || strings.HasPrefix(s, "refs/")) && errors.ValidateReferenceName(s) == nil {
		return ident.Reference(s), nil
	}
	return ident.Identifier{}, err
}

// parseIdentifiers parses every argument with [parseIdentifier].
func parseIdentifiers(args []string) ([]ident.Identifier, error) {
	ids := make([]ident.Identifier, 0, len(args))
	for _, a := range args {
		id, err := parseIdentifier(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
