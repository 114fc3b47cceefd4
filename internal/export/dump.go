package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/boardroom/internal/shell"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// DefaultLoadTimeout bounds how long Dump waits for a module to load.
const DefaultLoadTimeout = 10 * time.Second

// DumpOptions configures Dump.
type DumpOptions struct {
	Dir         string
	Format      string
	Now         time.Time
	Translator  types.Translator
	Logger      *slog.Logger
	LoadTimeout time.Duration
}

// Dump writes the default view of every module to its own file in
// opts.Dir and returns the file paths in module order. Modules are loaded
// concurrently; the first failure cancels the rest.
func Dump(ctx context.Context, store types.Store, mods []*shell.Module, opts DumpOptions) ([]string, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	files := make([]string, len(mods))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range mods {
		g.Go(func() error {
			path := filepath.Join(opts.Dir, Filename(m.Name, opts.Format, opts.Now))
			if err := dumpModule(gctx, store, m, path, opts); err != nil {
				return fmt.Errorf("exporting %s: %w", m.Name, err)
			}
			files[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	opts.Logger.Info("modules exported", "dir", opts.Dir, "count", len(files))
	return files, nil
}

func dumpModule(ctx context.Context, store types.Store, m *shell.Module, path string, opts DumpOptions) error {
	s, err := shell.Open(ctx, store, m, nil, shell.Options{Logger: opts.Logger, Translator: opts.Translator})
	if err != nil {
		return err
	}
	defer s.Close()

	wctx, cancel := context.WithTimeout(ctx, opts.LoadTimeout)
	defer cancel()
	if err := s.WaitLoaded(wctx); err != nil {
		return err
	}
	if err := s.Err(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, opts.Format, s.View(), m.Schema, opts.Translator); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
