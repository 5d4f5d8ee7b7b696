package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/session"
)

type checkOpts struct {
	format string
	strict bool
}

func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{}

	cmd := &cobra.Command{
		Use:   "check <input>",
		Short: "Report data defects found while building the forest",
		Long: `Check builds the forest of the selected tree and lists every defect the
build recovered from: dangling references, broken parent cycles, duplicate
or invalid records and conflicting generations. With --strict the command
fails when any defect is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "input format, "+formatList())
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when defects are found")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, w io.Writer, input string, opts checkOpts) error {
	sess, err := c.openSession(ctx, input, opts.format)
	if err != nil {
		return err
	}
	report := sess.Check(ctx)
	writeReport(w, report)

	if opts.strict && !report.Clean() {
		return errors.New(errors.ErrCodeInvalidInput, "%d defects in tree %q", defects(report), report.Tree)
	}
	return nil
}

func defects(r session.Report) int {
	return len(r.Diagnostics) + len(r.Unresolved) + len(r.Conflicts)
}

func writeReport(w io.Writer, r session.Report) {
	fmt.Fprintf(w, "%s: %d people, %d defects\n", r.Tree, r.People, defects(r))
	for _, u := range r.Unresolved {
		fmt.Fprintf(w, "  unresolved %s: %v\n", nameOr(u.Person.Name, u.Person.ID.String()), u.Err)
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d)
	}
	for _, cf := range r.Conflicts {
		fmt.Fprintf(w, "  %s\n", cf)
	}
}
