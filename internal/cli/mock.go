package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacentio/simpledb/mock"
)

func newMockCommand(opts *options) *cobra.Command {
	var (
		listen      string
		accessKeyID string
		secret      string
		pageSize    int
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an in-memory SimpleDB endpoint",
		Long: `Serve an in-memory SimpleDB endpoint for local development.
Requests must be signed with the configured credentials.

Examples:
  sdb mock --listen 127.0.0.1:8080
  SDB_HOST=127.0.0.1 SDB_PORT=8080 SDB_SCHEME=http sdb domains`,
		Args: args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mock.New(accessKeyID, secret,
				mock.WithPageSize(pageSize),
				mock.WithLogger(opts.logger(cmd)),
			)

			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", listen, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving SimpleDB on http://%s\n", ln.Addr())

			return serve(cmd.Context(), ln, srv)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8080", "address to listen on")
	cmd.Flags().StringVar(&accessKeyID, "access-key-id", "AKIDEXAMPLE", "access key id accepted by the server")
	cmd.Flags().StringVar(&secret, "secret-access-key", "secret", "secret used to verify signatures")
	cmd.Flags().IntVar(&pageSize, "page-size", mock.DefaultPageSize, "maximum items per select page")
	return cmd
}

// serve runs h on ln until ctx is done.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	server := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
