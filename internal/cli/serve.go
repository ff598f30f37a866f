package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/johannesboyne/s3fs"
	"github.com/johannesboyne/s3fs/internal/s3test"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var (
		host   string
		bucket string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local backend over the read-only S3 listing API",
		Long: `Serve a mem, bolt or afero backend over HTTP, answering the ListObjectsV2,
HeadObject and HeadBucket calls that the s3 backend makes. Point another
s3walk at it with --backend s3 --endpoint http://<host> --path-style.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := global.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if _, ok := sess.store.(writableStore); !ok {
				return fmt.Errorf("backend %q cannot be served", sess.cfg.Backend)
			}

			if bucket != "" {
				if creator, ok := sess.store.(bucketCreator); ok {
					err := creator.CreateBucket(bucket)
					if err != nil && !s3fs.HasErrorCode(err, s3fs.ErrContainerAlreadyExists) {
						return fmt.Errorf("could not create initial bucket %q: %w", bucket, err)
					}
					sess.log.Print(s3fs.LogInfo, "created bucket", bucket)
				}
			}

			server := s3test.New(sess.store,
				s3test.WithRegion(sess.cfg.Region),
				s3test.WithLogger(sess.log),
			)
			return listenAndServe(cmd.Context(), host, server.Server(), func(addr net.Addr) {
				fmt.Fprintln(cmd.OutOrStdout(), "listening on", addr)
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", ":9000", "Host to run the service")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket to create at startup")
	return cmd
}

// listenAndServe serves handler on addr until ctx is done.
func listenAndServe(ctx context.Context, addr string, handler http.Handler, ready func(addr net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(listener.Addr())
	}

	server := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- server.Serve(listener) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
