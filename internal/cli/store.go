package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/person"
	"github.com/matzehuels/kintree/pkg/storage"
)

func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored datasets",
		Long: `Store saves, loads, lists and deletes named datasets in the configured
backend (file, memory, redis or mongo). Stored datasets can be used as input
to other commands as "@name".`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeLoadCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// withRepository opens the configured backend for the duration of fn.
func (c *CLI) withRepository(ctx context.Context, fn func(storage.Repository) error) error {
	repo, err := c.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(repo)
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "save <name> <input>",
		Short: "Save a dataset under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := errors.ValidateDatasetName(name); err != nil {
				return err
			}
			people, err := c.readSource(ctx, args[1], format)
			if err != nil {
				return err
			}
			// Duplicate ids are rejected before anything is written.
			if err := person.NewStore().Replace(people); err != nil {
				return err
			}
			return c.withRepository(ctx, func(repo storage.Repository) error {
				if err := repo.Save(ctx, name, people); err != nil {
					return err
				}
				printSuccess("Saved %d people as %s", len(people), StyleHighlight.Render(name))
				printNextStep("Use it with", "kintree tree @"+name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "input format, "+formatList())

	return cmd
}

func (c *CLI) storeLoadCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "load <name> <output>",
		Short: "Write a stored dataset to a file",
		Long:  `Load writes a stored dataset to a file, or to stdout with "-" and --format.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			codec, err := pickCodec(args[1], format)
			if err != nil {
				return err
			}
			return c.withRepository(ctx, func(repo storage.Repository) error {
				ds, err := repo.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if args[1] == "-" {
					return kio.WriteTo(ctx, os.Stdout, codec, ds.People)
				}
				if err := kio.ExportFile(ctx, args[1], codec, ds.People); err != nil {
					return err
				}
				printSuccess("Loaded %d people from %s", len(ds.People), StyleHighlight.Render(ds.Name))
				printFile(args[1])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format, "+formatList())

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withRepository(ctx, func(repo storage.Repository) error {
				return listDatasets(ctx, cmd.OutOrStdout(), repo)
			})
		},
	}
}

func listDatasets(ctx context.Context, w io.Writer, repo storage.Repository) error {
	names, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		ds, err := repo.Load(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-24s %5d people  %s\n", name, len(ds.People), ds.SavedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withRepository(ctx, func(repo storage.Repository) error {
				if err := repo.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}
