package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/session"
)

type treeOpts struct {
	format      string
	fold        string
	collapseAll bool
	plain       bool
}

func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{}

	cmd := &cobra.Command{
		Use:   "tree <input>",
		Short: "Print the family forest indented by generation",
		Long: `Tree prints every visible person of the selected tree, one row per
household, children indented below their parents and spouses shown inline.
Folded people are marked with ▸ and their descendants are left out.`,
		Example: `  kintree tree family.csv
  kintree tree --tree smith --fold 3,7 @archive
  kintree tree --collapse-all family.ged`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "input format, "+formatList())
	cmd.Flags().StringVar(&opts.fold, "fold", "", "comma-separated ids to fold")
	cmd.Flags().BoolVar(&opts.collapseAll, "collapse-all", false, "fold every person with children")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colors")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, w io.Writer, input string, opts treeOpts) error {
	sess, err := c.openSession(ctx, input, opts.format)
	if err != nil {
		return err
	}
	if err := applyFolds(ctx, sess, opts.fold, opts.collapseAll); err != nil {
		return err
	}

	f := sess.Forest(ctx)
	gens := sess.Generations(ctx)
	if !opts.plain {
		fmt.Fprintln(w, StyleTitle.Render(sess.Tree()))
		fmt.Fprintln(w, statsLine(f.Len(), gens.Depth(), len(f.Roots())))
	}
	writeNodes(ctx, w, sess, !opts.plain)
	return nil
}

// applyFolds folds the listed ids, or every parent when all is set.
func applyFolds(ctx context.Context, sess *session.Session, list string, all bool) error {
	if all {
		sess.CollapseAll(ctx)
		return nil
	}
	ids, err := parseIDList(list)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := sess.ToggleFold(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func writeNodes(ctx context.Context, w io.Writer, sess *session.Session, styled bool) {
	for _, n := range sess.Nodes(ctx) {
		line := formatNode(n, styled)
		if n.Folded && n.Hidden > 0 {
			hidden := fmt.Sprintf(" (+%d)", n.Hidden)
			if styled {
				hidden = StyleDim.Render(hidden)
			}
			line += hidden
		}
		fmt.Fprintln(w, line)
	}
}
