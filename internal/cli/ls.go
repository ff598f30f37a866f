package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johannesboyne/s3fs"
)

func newLsCmd(global *globalOptions) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "ls <path>",
		Short: "List the direct children of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := global.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			dir, err := sess.path(args[0])
			if err != nil {
				return err
			}
			entries, err := sess.fsys.ReadDir(cmd.Context(), dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			for _, entry := range entries {
				name := st.file.Render(entry.Name())
				if entry.IsDir() {
					name = st.dir.Render(entry.Name() + "/")
				}
				if !long {
					fmt.Fprintln(out, name)
					continue
				}

				info, _ := entry.Info()
				size, when := "-", "-"
				if !entry.IsDir() {
					size = humanize.Bytes(uint64(info.Size()))
					when = humanize.Time(info.ModTime())
				}
				fmt.Fprintf(out, "%s %s  %s  %s\n", info.Mode(), st.size.Render(size), st.muted.Render(when), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Print mode, size and age")
	return cmd
}

func newStatCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Describe a single path without listing below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := global.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			p, err := sess.path(args[0])
			if err != nil {
				return err
			}
			info, err := sess.fsys.Stat(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			field := func(label, value string) {
				fmt.Fprintf(out, "%s%s\n", st.label.Render(label), value)
			}

			field("Path", p.String())
			field("Name", info.Name())
			if info.IsDir() {
				field("Type", "directory")
			} else {
				field("Type", "file")
				field("Size", fmt.Sprintf("%s (%d bytes)", humanize.Bytes(uint64(info.Size())), info.Size()))
				field("Modified", info.ModTime().UTC().Format("2006-01-02T15:04:05Z07:00"))
				if obj, ok := info.Sys().(*s3fs.ObjectInfo); ok && obj.ETag != "" {
					field("ETag", obj.ETag)
				}
			}
			field("Mode", info.Mode().String())
			return nil
		},
	}
}
