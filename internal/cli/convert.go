package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/person"
)

type convertOpts struct {
	from string
	to   string
}

func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{}

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a dataset between formats",
		Long: `Convert re-encodes a dataset. Formats are taken from the file extensions
unless --from or --to is given. Use "-" for stdin or stdout and "@name" to read
a stored dataset. Only records of the selected --tree are written.`,
		Example: `  kintree convert family.csv family.ged
  kintree convert --to yaml @smith -
  kintree convert --tree smith family.json smith.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "input format, "+formatList())
	cmd.Flags().StringVar(&opts.to, "to", "", "output format, "+formatList())

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, input, output string, opts convertOpts) error {
	done := timed(loggerFromContext(ctx))

	people, err := c.readSource(ctx, input, opts.from)
	if err != nil {
		return err
	}
	codec, err := pickCodec(output, opts.to)
	if err != nil {
		return err
	}

	store := person.NewStore()
	if err := store.Replace(people); err != nil {
		return err
	}
	scoped := store.Scope(c.tree)

	if output == "-" {
		return kio.WriteTo(ctx, os.Stdout, codec, scoped)
	}
	if err := kio.ExportFile(ctx, output, codec, scoped); err != nil {
		return err
	}
	done("converted dataset", "people", len(scoped), "format", codec.Format())
	printSuccess("Wrote %d people as %s", len(scoped), codec.Format())
	printFile(output)
	return nil
}
