package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/boardroom/internal/export"
	"github.com/mesh-intelligence/boardroom/internal/httpapi"
	"github.com/mesh-intelligence/boardroom/internal/modules"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard modules over HTTP",
		Long: `Serve starts the HTTP API. Collection files edited outside the server are
picked up when watch is enabled. With auth.secret set, writes need a bearer
token (see "boardroom token"); otherwise the X-User-ID and X-User-Role
headers identify the caller. With export.schedule set (cron syntax), every
module is exported to export.dir on that schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.GetString(cfgKeyListen)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: listen from config)")
	return cmd
}

// serve runs the HTTP server, and the export schedule when configured,
// until ctx ends.
func (a *app) serve(ctx context.Context, listen string) error {
	store, err := a.attachStore(a.cfg.GetBool(cfgKeyWatch))
	if err != nil {
		return err
	}
	defer store.Detach()

	opts := httpapi.Options{
		Logger:  a.log,
		Catalog: a.catalog,
		Locale:  a.locale(),
		Version: Version,
	}
	tokens, err := a.tokens(0)
	if err != nil {
		return err
	}
	if tokens != nil {
		opts.Tokens = tokens
	}

	var sched *export.Scheduler
	if spec := a.cfg.GetString(cfgKeyExportSchedule); spec != "" {
		sched, err = a.exportScheduler(spec, store, a.exportDir(store.DataDir()))
		if err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return sysError("listen on %s: %w", listen, err)
	}
	srv := &http.Server{
		Handler:           httpapi.New(store, opts).Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("http server started", "addr", ln.Addr().String(), "auth", tokens != nil)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return sysError("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return sysError("shutdown: %w", err)
		}
		a.log.Info("http server stopped")
		return nil
	})
	if sched != nil {
		g.Go(func() error { return sched.Run(gctx) })
	}
	return g.Wait()
}

// exportScheduler builds the job that dumps every module to dir.
func (a *app) exportScheduler(spec string, store types.Store, dir string) (*export.Scheduler, error) {
	format, err := a.exportFormat("")
	if err != nil {
		return nil, err
	}
	job := func(ctx context.Context) error {
		files, err := export.Dump(ctx, store, modules.All(), export.DumpOptions{
			Dir:        dir,
			Format:     format,
			Translator: a.translator(),
			Logger:     a.log,
		})
		if err != nil {
			return err
		}
		a.log.Info("scheduled export written", "dir", dir, "files", len(files))
		return nil
	}
	sched, err := export.NewScheduler(spec, job, a.log)
	if err != nil {
		return nil, userError("export.schedule: %w", err)
	}
	return sched, nil
}
