package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/johannesboyne/s3fs"
)

func newPutCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <path> [file]",
		Short: "Store a local file (or stdin) at a path in a local backend",
		Long: `Store a local file at a path in a mem, bolt or afero backend. Without a
file, or with "-", the object is read from stdin. A path ending in "/"
stores an empty directory marker.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := global.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			store, ok := sess.store.(writableStore)
			if !ok {
				return fmt.Errorf("backend %q is read-only", sess.cfg.Backend)
			}

			p, err := sess.path(args[0])
			if err != nil {
				return err
			}
			if p.IsRoot() {
				return fmt.Errorf("path %q has no key", p)
			}
			key := p.Key()
			if p.IsDirectory() {
				key = p.Prefix()
			}

			var body io.ReadCloser = io.NopCloser(bytes.NewReader(nil))
			var size int64
			if !p.IsDirectory() {
				body, size, err = openInput(cmd, args[1:])
				if err != nil {
					return err
				}
			}
			defer body.Close()

			if err := store.PutObject(p.Container(), key, body, size); err != nil {
				return err
			}
			sess.fsys.Forget(p)
			sess.log.Print(s3fs.LogInfo, "stored", p, size, "bytes")
			return nil
		},
	}
}

// openInput opens the named file, or buffers stdin so its size is known.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, int64, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, 0, err
		}
		return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, 0, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, stat.Size(), nil
}

func newMbCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mb <container>",
		Short: "Create a container in a local backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := global.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			creator, ok := sess.store.(bucketCreator)
			if !ok {
				return fmt.Errorf("backend %q cannot create containers", sess.cfg.Backend)
			}
			return creator.CreateBucket(args[0])
		},
	}
}
