package main

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-renderchain/internal/app"
	"github.com/goliatone/go-renderchain/internal/document"
	"github.com/goliatone/go-renderchain/internal/sanitize"
	"github.com/goliatone/go-renderchain/pkg/facade"
)

type renderFlags struct {
	data     string
	variant  string
	output   string
	sanitize bool
	theme    string
	themeVar string
}

func (f *renderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "YAML or JSON document holding the template variables")
	cmd.Flags().StringVar(&f.variant, "variant", "", "template variant, e.g. teaser")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&f.sanitize, "sanitize", false, "strip unsafe markup from the rendered HTML")
	cmd.Flags().StringVar(&f.theme, "theme", "", "theme whose templates form the template tier")
	cmd.Flags().StringVar(&f.themeVar, "theme-variant", "", "variant of the selected theme")
}

func (f *renderFlags) useTheme(a *app.App) error {
	if f.theme == "" {
		return nil
	}
	return a.UseTheme(f.theme, f.themeVar)
}

func newRenderCmd(c *cli) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <type>",
		Short: "Render a document of the given type",
		Example: `  renderctl render blog.Post --data post.yaml
  renderctl render blog.Post --data post.yaml --variant teaser --sanitize`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app()
			if err != nil {
				return err
			}
			if err := flags.useTheme(a); err != nil {
				return err
			}
			facade.Init(a.Renderer)
			return renderDocument(cmd, args[0], flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

// renderDocument renders through the facade renderer.
func renderDocument(cmd *cobra.Command, typeName string, flags *renderFlags) error {
	doc, err := document.Load(flags.data, typeName)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := facade.Render(cmd.Context(), &buf, doc, flags.variant); err != nil {
		return err
	}
	out := buf.String()
	if flags.sanitize {
		out = sanitize.HTML(out)
	}

	if flags.output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(flags.output, []byte(out), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", flags.output)
	}
	cmd.PrintErrf("Rendered %s to %s\n", typeName, flags.output)
	return nil
}
