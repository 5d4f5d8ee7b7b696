package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
)

var validFormats = map[string]bool{"dot": true, "svg": true, "pdf": true, "png": true}

type renderOpts struct {
	input       string
	output      string
	formats     []string
	detailed    bool
	fold        string
	collapseAll bool
	scale       float64
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}
	var formats string

	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Draw the family forest with Graphviz",
		Long: `Render lays out the selected tree as a node-link diagram: one rank per
generation, solid edges from parents to children and dashed edges between
spouses. Folded people keep their box but hide their descendants.`,
		Example: `  kintree render family.csv
  kintree render -f svg,png --detailed -o smith @archive
  kintree render --collapse-all -f dot family.ged`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseFormats(formats)
			if err != nil {
				return err
			}
			opts.formats = parsed
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "format", "", "input format, "+formatList())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path without extension (default: input name)")
	cmd.Flags().StringVarP(&formats, "formats", "f", "svg", "comma-separated output formats: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add birth and death dates to boxes")
	cmd.Flags().StringVar(&opts.fold, "fold", "", "comma-separated ids to fold")
	cmd.Flags().BoolVar(&opts.collapseAll, "collapse-all", false, "fold every person with children")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")

	return cmd
}

func parseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if !validFormats[f] {
			return nil, errors.New(errors.ErrCodeUnsupported, "unknown render format %q", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no render format given")
	}
	return out, nil
}

// basePath derives the output path stem from --output or the input file.
func basePath(output, input string) string {
	if output == "" {
		if strings.HasPrefix(input, "@") {
			return strings.TrimPrefix(input, "@")
		}
		if input == "-" {
			return "kintree"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	sess, err := c.openSession(ctx, input, opts.input)
	if err != nil {
		return err
	}
	if err := applyFolds(ctx, sess, opts.fold, opts.collapseAll); err != nil {
		return err
	}

	f := sess.Forest(ctx)
	gens := sess.Generations(ctx)
	logger.Infof("Built forest: %d people, %d generations", f.Len(), gens.Depth())

	view := sess.View()
	dot := nodelink.ToDOT(f, gens, nodelink.Options{
		Detailed:  opts.detailed,
		Collapsed: view.IsFolded,
	})

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		data, err := renderFormat(ctx, dot, format, opts.scale)
		if err != nil {
			return err
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		printFile(path)
	}
	printSuccess("Rendered %d people", f.Len())
	return nil
}

func renderFormat(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()
	defer spinner.Stop()

	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return nodelink.RenderSVG(ctx, dot)
	case "pdf":
		return nodelink.RenderPDF(ctx, dot)
	case "png":
		return nodelink.RenderPNG(ctx, dot, scale)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown render format %q", format)
}
