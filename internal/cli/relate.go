package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/forest"
	"github.com/matzehuels/kintree/pkg/kinship"
)

type relateOpts struct {
	format string
	path   bool
	json   bool
}

func (c *CLI) relateCommand() *cobra.Command {
	opts := relateOpts{}

	cmd := &cobra.Command{
		Use:   "relate <input> <a> <b>",
		Short: "Describe how person a is related to person b",
		Example: `  kintree relate family.csv 4 2
  kintree relate --path --tree smith family.ged 12 31`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRelate(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "input format, "+formatList())
	cmd.Flags().BoolVar(&opts.path, "path", false, "print the connecting path")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the relationship as JSON")

	return cmd
}

func (c *CLI) runRelate(ctx context.Context, w io.Writer, args []string, opts relateOpts) error {
	a, err := parseIDArg(args[1])
	if err != nil {
		return err
	}
	b, err := parseIDArg(args[2])
	if err != nil {
		return err
	}
	sess, err := c.openSession(ctx, args[0], opts.format)
	if err != nil {
		return err
	}

	rel, err := sess.Relate(ctx, a, b)
	if err != nil {
		return err
	}
	f := sess.Forest(ctx)

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rel)
	}

	fmt.Fprintln(w, rel.Sentence(f))
	if opts.path {
		fmt.Fprintln(w, formatPath(f, rel.Path))
	}
	return nil
}

// formatPath renders a path as "Dee -parent-> Cal -parent-> Bob".
func formatPath(f *forest.Forest, path []kinship.Step) string {
	if len(path) == 0 {
		return ""
	}
	var b strings.Builder
	first, _ := f.Person(path[0].From)
	b.WriteString(nameOr(first.Name, path[0].From.String()))
	for _, s := range path {
		to, _ := f.Person(s.To)
		fmt.Fprintf(&b, " -%s-> %s", s.Edge, nameOr(to.Name, s.To.String()))
	}
	return b.String()
}

func nameOr(name, fallback string) string {
	if name == "" {
		return "#" + fallback
	}
	return name
}
