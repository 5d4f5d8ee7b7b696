// Package cli implements the kintree command-line interface.
//
// Commands read a person dataset from a file (format picked from the
// extension or --format), from stdin ("-"), or from the configured storage
// backend ("@name"), then build the forest of the selected tree:
//   - convert: re-encode a dataset in another format
//   - tree: print the forest indented by generation
//   - relate: describe how two people are related
//   - check: list recovered data defects
//   - render: draw the forest with Graphviz
//   - browse: interactive terminal browser
//   - serve: run the HTTP API
//   - store: save, load, list and delete stored datasets
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/config"
	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/errors"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/storage"
)

const appName = "kintree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	tree       string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "kintree builds family trees from person records",
		Long:          `kintree turns flat person records into a multi-generation family forest, answers relationship queries and converts between JSON, CSV, GEDCOM and YAML.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			level := cfg.Level()
			if c.verbose {
				level = log.DebugLevel
			}
			c.SetLogLevel(level)
			if !cmd.Flags().Changed("tree") && cfg.Tree != "" {
				c.tree = cfg.Tree
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kintree/config.toml)")
	root.PersistentFlags().StringVarP(&c.tree, "tree", "t", person.TreeAll, "tree key to work on (\"all\" for every record)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.relateCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Sources
// =============================================================================

// readSource decodes people from a file path, "-" for stdin, or "@name" for
// a stored dataset.
func (c *CLI) readSource(ctx context.Context, source, format string) ([]person.Person, error) {
	logger := loggerFromContext(ctx)

	if name, ok := strings.CutPrefix(source, "@"); ok {
		repo, err := c.openRepository(ctx)
		if err != nil {
			return nil, err
		}
		defer repo.Close()
		ds, err := repo.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded dataset", "name", name, "people", len(ds.People), "backend", c.Config.Storage.Backend)
		return ds.People, nil
	}

	codec, err := pickCodec(source, format)
	if err != nil {
		return nil, err
	}
	if source == "-" {
		return kio.ReadFrom(ctx, os.Stdin, codec)
	}
	people, err := kio.ImportFile(ctx, source, codec)
	if err != nil {
		return nil, err
	}
	logger.Debug("read file", "path", source, "format", codec.Format(), "people", len(people))
	return people, nil
}

// openSession reads source into a fresh session on the selected tree.
func (c *CLI) openSession(ctx context.Context, source, format string) (*session.Session, error) {
	people, err := c.readSource(ctx, source, format)
	if err != nil {
		return nil, err
	}
	store := person.NewStore()
	if err := store.Replace(people); err != nil {
		return nil, err
	}
	sess := session.New(store, session.WithLogger(loggerFromContext(ctx)))
	if err := sess.SelectTree(c.tree); err != nil {
		return nil, err
	}
	return sess, nil
}

func (c *CLI) openRepository(ctx context.Context) (storage.Repository, error) {
	return storage.Open(ctx, c.Config.StorageConfig())
}

// pickCodec uses the explicit format when given, else the file extension.
func pickCodec(path, format string) (kio.Codec, error) {
	if format != "" {
		return kio.ForFormat(format)
	}
	if path == "-" || path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--format is required when reading stdin or writing stdout")
	}
	return kio.ForPath(path)
}

// parseIDArg parses a positional person id.
func parseIDArg(s string) (person.ID, error) {
	id, err := person.ParseID(s)
	if err != nil || id == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid person id %q", s)
	}
	return id, nil
}

// parseIDList parses a comma-separated id list such as "3,7,12".
func parseIDList(s string) ([]person.ID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []person.ID
	for _, part := range strings.Split(s, ",") {
		id, err := parseIDArg(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatList() string {
	return fmt.Sprintf("one of %s", strings.Join(kio.Formats(), ", "))
}
