package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johannesboyne/s3fs"
)

type walkOptions struct {
	dirs  bool
	long  bool
	stats bool
}

func newWalkCmd(global *globalOptions) *cobra.Command {
	opts := &walkOptions{}
	cmd := &cobra.Command{
		Use:   "walk <path>",
		Short: "Print every file below a path",
		Long: `Print every file below a path, one per line, in walk order: the
subdirectories of a directory come before its files, each group sorted by key.

Directories that cannot be listed are reported on stderr and the walk carries
on; the command fails at the end if anything was reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd, global, opts, args[0])
		},
	}
	cmd.Flags().BoolVarP(&opts.dirs, "dirs", "d", false, "Also print directories")
	cmd.Flags().BoolVarP(&opts.long, "long", "l", false, "Print size and modification time")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print the number of store calls on stderr")
	return cmd
}

func runWalk(cmd *cobra.Command, global *globalOptions, opts *walkOptions, raw string) error {
	sess, err := global.open(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	root, err := sess.path(raw)
	if err != nil {
		return err
	}
	walkOpts, err := sess.walkOptions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)

	emit := func(p s3fs.Path, info *s3fs.FileInfo) {
		name := st.file.Render(p.String())
		if info.IsDir() {
			name = st.dir.Render(p.String())
		}
		if !opts.long {
			fmt.Fprintln(out, name)
			return
		}
		size, mtime := "-", "-"
		if !info.IsDir() {
			size = humanize.Bytes(uint64(info.Size()))
			mtime = info.ModTime().UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "%s  %s  %s\n", st.size.Render(size), st.muted.Render(mtime), name)
	}

	collector := s3fs.CollectErrors(s3fs.VisitorFuncs{
		EnterDirectoryFunc: func(dir s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
			if opts.dirs {
				emit(dir, info)
			}
			return s3fs.Continue
		},
		VisitFileFunc: func(file s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
			emit(file, info)
			return s3fs.Continue
		},
		VisitFileFailedFunc: func(file s3fs.Path, err error) s3fs.VisitResult {
			fmt.Fprintln(cmd.ErrOrStderr(), st.err.Render(fmt.Sprintf("%s: %v", file, err)))
			return s3fs.Continue
		},
	})

	if err := sess.fsys.Walk(cmd.Context(), root, collector, walkOpts...); err != nil {
		return err
	}
	if opts.stats {
		fmt.Fprintln(cmd.ErrOrStderr(), sess.calls)
	}
	return collector.Err()
}

func newTreeCmd(global *globalOptions) *cobra.Command {
	var sizes bool
	cmd := &cobra.Command{
		Use:   "tree <path>",
		Short: "Print the directory tree below a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, global, args[0], sizes)
		},
	}
	cmd.Flags().BoolVarP(&sizes, "size", "s", false, "Print file sizes")
	return cmd
}

func runTree(cmd *cobra.Command, global *globalOptions, raw string, sizes bool) error {
	sess, err := global.open(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	root, err := sess.path(raw)
	if err != nil {
		return err
	}
	walkOpts, err := sess.walkOptions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)

	var dirs, files int
	var total int64

	depth := func(p s3fs.Path) int {
		rel, err := root.Relativize(p)
		if err != nil {
			return 0
		}
		return rel.NameCount()
	}
	line := func(p s3fs.Path, text string) {
		fmt.Fprintf(out, "%s%s\n", strings.Repeat("    ", depth(p)), text)
	}

	collector := s3fs.CollectErrors(s3fs.VisitorFuncs{
		EnterDirectoryFunc: func(dir s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
			if dir.Equal(root) {
				fmt.Fprintln(out, st.heading.Render(dir.String()))
				return s3fs.Continue
			}
			dirs++
			line(dir, st.dir.Render(dir.FileName().String()+"/"))
			return s3fs.Continue
		},
		VisitFileFunc: func(file s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
			files++
			total += info.Size()
			text := st.file.Render(file.FileName().String())
			if sizes {
				text += " " + st.muted.Render("("+humanize.Bytes(uint64(info.Size()))+")")
			}
			line(file, text)
			return s3fs.Continue
		},
		VisitFileFailedFunc: func(file s3fs.Path, err error) s3fs.VisitResult {
			line(file, st.err.Render(fmt.Sprintf("%s [%v]", file.FileName(), err)))
			return s3fs.Continue
		},
	})

	if err := sess.fsys.Walk(cmd.Context(), root, collector, walkOpts...); err != nil {
		return err
	}

	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d directories, %d files", dirs, files)
	if sizes {
		summary += ", " + humanize.Bytes(uint64(total))
	}
	fmt.Fprintln(out, st.muted.Render(summary))
	return collector.Err()
}
