package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johannesboyne/s3fs"
)

type uriOptions struct {
	resolve    string
	sibling    string
	relativize string
}

// newURICmd is offline; it never calls the store.
func newURICmd(global *globalOptions) *cobra.Command {
	opts := &uriOptions{}
	cmd := &cobra.Command{
		Use:   "uri <path>",
		Short: "Show how a path is parsed, and combine it with others",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}
			fsys := s3fs.New(endpointName(cfg), nil)
			defer fsys.Close()

			p, err := parsePath(fsys, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			field := func(label string, value any) {
				fmt.Fprintf(out, "%s%v\n", st.label.Render(label), value)
			}

			describe(p, field)

			if opts.resolve != "" {
				other, err := fsys.Path(opts.resolve)
				if err != nil {
					return err
				}
				field("Resolve", p.Resolve(other))
			}
			if opts.sibling != "" {
				other, err := fsys.Path(opts.sibling)
				if err != nil {
					return err
				}
				field("Sibling", p.ResolveSibling(other))
			}
			if opts.relativize != "" {
				other, err := parsePath(fsys, opts.relativize)
				if err != nil {
					return err
				}
				rel, err := p.Relativize(other)
				if err != nil {
					return err
				}
				field("Relative", rel)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.resolve, "resolve", "", "Resolve another path against this one")
	cmd.Flags().StringVar(&opts.sibling, "sibling", "", "Resolve another path against this one's parent")
	cmd.Flags().StringVar(&opts.relativize, "relativize", "", "Express another path relative to this one")
	return cmd
}

func describe(p s3fs.Path, field func(label string, value any)) {
	field("Path", p)
	if u := p.ToURI(); u != nil {
		field("URI", u)
	}
	field("Absolute", p.IsAbsolute())
	if p.IsAbsolute() {
		field("Container", p.Container())
	}
	field("Key", p.Key())
	field("Prefix", p.Prefix())
	field("Directory", p.IsDirectory())
	field("File name", p.FileName())
	if parent, ok := p.Parent(); ok {
		field("Parent", parent)
	}

	var names []string
	for name := range p.Names() {
		names = append(names, name.String())
	}
	field("Names", strings.Join(names, " | "))
}
