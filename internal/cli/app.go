package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/mesh-intelligence/boardroom/internal/modules"
	"github.com/mesh-intelligence/boardroom/internal/paths"
	"github.com/mesh-intelligence/boardroom/internal/shell"
	"github.com/mesh-intelligence/boardroom/internal/sqlite"
	"github.com/mesh-intelligence/boardroom/internal/view"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// loadTimeout bounds how long a command waits for module data.
const loadTimeout = 10 * time.Second

// dataDir resolves the data directory: flag, env, config.yaml, default.
func (a *app) dataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
}

// attachStore resolves the data directory and attaches a SQLite backend.
// The caller must defer Detach.
func (a *app) attachStore(watch bool) (*sqlite.Backend, error) {
	dir, err := a.dataDir()
	if err != nil {
		return nil, sysError("resolve data dir: %w", err)
	}
	store := sqlite.NewBackend(sqlite.WithLogger(a.log))
	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: dir,
		Watch:   watch,
	}
	if err := store.Attach(cfg); err != nil {
		if errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrBackendEmpty) {
			return nil, userError("backend %q: %w", cfg.Backend, err)
		}
		return nil, sysError("attach store: %w", err)
	}
	return store, nil
}

// locale returns the display locale: flag, then config.
func (a *app) locale() language.Tag {
	if a.flags.locale != "" {
		return view.ParseLocale(a.flags.locale)
	}
	return view.ParseLocale(a.cfg.GetString(cfgKeyLocale))
}

func (a *app) translator() types.Translator {
	return a.catalog.Translator(a.locale())
}

// identity returns the acting user from flags or the BOARDROOM_USER and
// BOARDROOM_ROLE variables, or nil when none is given.
func (a *app) identity() *types.Identity {
	user := a.flags.user
	if user == "" {
		user = a.cfg.GetString(cfgKeyUser)
	}
	if user == "" {
		return nil
	}
	role := a.flags.role
	if role == "" {
		role = a.cfg.GetString(cfgKeyRole)
	}
	return &types.Identity{UserID: user, Role: role}
}

// lookup returns the named module or a user error listing the valid names.
func lookup(name string) (*shell.Module, error) {
	m, err := modules.Lookup(name)
	if err != nil {
		return nil, userError("%w (valid: %s)", err, strings.Join(modules.Names(), ", "))
	}
	return m, nil
}

// openModule opens a session on the named module and waits for its data.
// The caller must Close the session.
func (a *app) openModule(ctx context.Context, store types.Store, name string) (*shell.Session, error) {
	m, err := lookup(name)
	if err != nil {
		return nil, err
	}
	sess, err := shell.Open(ctx, store, m, a.identity(), shell.Options{
		Logger:     a.log,
		Locale:     a.locale(),
		Translator: a.translator(),
	})
	if err != nil {
		return nil, sysError("open %s: %w", name, err)
	}

	wctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := sess.WaitLoaded(wctx); err != nil {
		sess.Close()
		return nil, sysError("loading %s: %w", name, err)
	}
	if err := sess.Err(); err != nil {
		sess.Close()
		return nil, sysError("loading %s: %w", name, err)
	}
	return sess, nil
}

// parseFields decodes a JSON object argument.
func parseFields(arg string) (types.Record, error) {
	var fields types.Record
	if err := json.Unmarshal([]byte(arg), &fields); err != nil || fields == nil {
		return nil, userError("invalid JSON object %q", arg)
	}
	return fields, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError("encode output: %w", err)
	}
	return nil
}
