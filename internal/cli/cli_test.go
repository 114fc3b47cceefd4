package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/boardroom/internal/auth"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// workspace is a config and data directory pair for one test.
type workspace struct {
	configDir string
	dataDir   string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	for _, k := range []string{"BOARDROOM_USER", "BOARDROOM_ROLE", "BOARDROOM_AUTH_SECRET", "BOARDROOM_LOCALE"} {
		t.Setenv(k, "")
	}
	root := t.TempDir()
	return workspace{configDir: filepath.Join(root, "config"), dataDir: filepath.Join(root, "data")}
}

type result struct {
	stdout string
	stderr string
	code   int
}

// run executes the CLI against the workspace with stdin as input.
func (w workspace) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	root := NewRootCmd()
	var out, errb bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errb)
	root.SetIn(strings.NewReader(stdin))
	all := append([]string{"--config-dir", w.configDir, "--data-dir", w.dataDir}, args...)
	code := run(root, all)
	return result{stdout: out.String(), stderr: errb.String(), code: code}
}

func (w workspace) add(t *testing.T, module, body string, args ...string) types.Record {
	t.Helper()
	res := w.run(t, "", append([]string{"add", module, body, "--json"}, args...)...)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	var wr writeResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &wr))
	require.Equal(t, "succeeded", string(wr.State))
	return wr.Record
}

func (w workspace) list(t *testing.T, args ...string) []types.Record {
	t.Helper()
	res := w.run(t, "", append([]string{"list", "--json"}, args...)...)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	var records []types.Record
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &records))
	return records
}

var member = []string{"--user", "ana", "--role", "member"}
var admin = []string{"--user", "luis", "--role", "admin"}

func TestVersion(t *testing.T) {
	w := newWorkspace(t)
	res := w.run(t, "", "version")
	assert.Equal(t, exitSuccess, res.code)
	assert.Equal(t, "boardroom v"+Version+"\nmodule: "+modulePath+"\n", res.stdout)

	_, err := os.Stat(w.configDir)
	assert.True(t, os.IsNotExist(err), "version does not touch the config dir")
}

func TestInit(t *testing.T) {
	w := newWorkspace(t)
	res := w.run(t, "", "init")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Boardroom initialized in "+w.dataDir)

	data, err := os.ReadFile(filepath.Join(w.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "locale: es")

	info, err := os.Stat(w.dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	res = w.run(t, "", "init")
	assert.Equal(t, exitSuccess, res.code, "init is idempotent")
}

func TestUnknownBackendIsUserError(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.MkdirAll(w.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(w.configDir, configFileExt), []byte("backend: mongo\n"), 0o644))

	res := w.run(t, "", "init")
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "unknown backend")
}

func TestModules(t *testing.T) {
	w := newWorkspace(t)

	res := w.run(t, "", append([]string{"modules", "--json", "--locale", "en"}, member...)...)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	var mods []moduleSummary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &mods))
	require.Len(t, mods, 15)
	assert.Equal(t, "Activities", mods[0].Title)
	assert.True(t, mods[0].CanWrite)

	byName := map[string]moduleSummary{}
	for _, m := range mods {
		byName[m.Name] = m
	}
	assert.False(t, byName["projects"].CanWrite)
	assert.False(t, byName["finance_summary"].CanWrite)

	res = w.run(t, "", "modules")
	require.Equal(t, exitSuccess, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "NAME"))
	assert.Contains(t, res.stdout, "finance_summary")
	assert.Contains(t, res.stdout, "admin, read-only")
}

func TestAddAndList(t *testing.T) {
	w := newWorkspace(t)

	rec := w.add(t, "press_logs", `{"date":"2024-01-10","outlet":"El Comercio","type":"Online","reach":1500,"themes":["Trade"]}`, member...)
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, "ana", rec[types.FieldCreatedBy])
	w.add(t, "press_logs", `{"date":"2024-03-02","outlet":"Ecuavisa","type":"TV","reach":9000}`, member...)
	w.add(t, "press_logs", `{"date":"2024-02-20","outlet":"Primicias","type":"Online"}`, member...)

	records := w.list(t, "press_logs")
	require.Len(t, records, 3)
	assert.Equal(t, "Ecuavisa", records[0]["outlet"], "newest first")

	records = w.list(t, "press_logs", "type=Online", "--sort", "reach", "--asc")
	require.Len(t, records, 2)
	assert.Equal(t, "Primicias", records[0]["outlet"])
	assert.Equal(t, "El Comercio", records[1]["outlet"])

	records = w.list(t, "press_logs", "outlet=comer")
	require.Len(t, records, 1)

	records = w.list(t, "press_logs", "type=All")
	assert.Len(t, records, 3)
}

func TestListTable(t *testing.T) {
	w := newWorkspace(t)
	w.add(t, "press_logs", `{"date":"2024-01-10","outlet":"El Comercio","type":"Online","themes":["Trade","Tax"]}`, member...)

	res := w.run(t, "", "list", "press_logs")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "FECHA")
	assert.Contains(t, lines[1], "Digital", "option codes show translated labels")
	assert.Contains(t, lines[1], "Comercio, Tributación")
	assert.Equal(t, "Total: 1 record(s)", lines[2])

	res = w.run(t, "", "list", "press_logs", "--locale", "en")
	assert.Contains(t, res.stdout, "DATE")

	res = w.run(t, "", "list", "press_logs", "type=Radio", "--locale", "en")
	assert.Equal(t, "No records match the current filters.\n", res.stdout)
}

func TestListRejectsBadInput(t *testing.T) {
	w := newWorkspace(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown module", []string{"list", "nope"}, "unknown module"},
		{"malformed filter", []string{"list", "fees", "status"}, "expected key=value"},
		{"unknown filter column", []string{"list", "fees", "nope=1"}, "not filterable"},
		{"numeric filter column", []string{"list", "fees", "amount=1"}, "not filterable"},
		{"unknown sort column", []string{"list", "fees", "--sort", "nope"}, "not sortable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := w.run(t, "", tt.args...)
			assert.Equal(t, exitUserError, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestAddGates(t *testing.T) {
	w := newWorkspace(t)

	res := w.run(t, "", "add", "activities", `{"title":"x"}`, "--locale", "en")
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "Sign in to make changes.")

	res = w.run(t, "", append([]string{"add", "projects", `{"name":"x"}`, "--locale", "en"}, member...)...)
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "permission")

	res = w.run(t, "", append([]string{"add", "finance_summary", `{"amount":1}`}, admin...)...)
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "read-only")

	res = w.run(t, "", append([]string{"add", "fees", `[1]`}, admin...)...)
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "invalid JSON object")

	w.add(t, "projects", `{"name":"Trade watch"}`, admin...)
	records := w.list(t, "projects")
	require.Len(t, records, 1)
	assert.Equal(t, "Proposed", records[0]["status"])
}

func TestAddHumanOutput(t *testing.T) {
	w := newWorkspace(t)
	res := w.run(t, "", append([]string{"add", "fees", `{"member":"Acme","amount":50}`, "--locale", "en"}, member...)...)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "Saved: "), res.stdout)
}

func TestMeetingsDedupTags(t *testing.T) {
	w := newWorkspace(t)
	rec := w.add(t, "meetings", `{"title":"Assembly","attendees":["Ana","Luis","Ana"]}`, admin...)
	assert.Equal(t, []any{"Ana", "Luis"}, rec["attendees"])
}

func TestUpdate(t *testing.T) {
	w := newWorkspace(t)
	rec := w.add(t, "fees", `{"member":"Acme","amount":50,"status":"Pending"}`, member...)

	res := w.run(t, "", append([]string{"update", "fees", rec.ID(), `{"status":"Paid"}`}, member...)...)
	require.Equal(t, exitSuccess, res.code, res.stderr)

	records := w.list(t, "fees")
	require.Len(t, records, 1)
	assert.Equal(t, "Paid", records[0]["status"])
	assert.Equal(t, "Acme", records[0]["member"])
	assert.Equal(t, 50.0, records[0]["amount"])

	res = w.run(t, "", append([]string{"update", "fees", "missing", `{"status":"Paid"}`}, member...)...)
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "not found")
}

func TestDelete(t *testing.T) {
	w := newWorkspace(t)
	rec := w.add(t, "donations", `{"donor":"Acme","amount":10}`, member...)

	res := w.run(t, "n\n", append([]string{"delete", "donations", rec.ID(), "--locale", "en"}, member...)...)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Delete this record? [y/N]")
	assert.Equal(t, "Nothing deleted.\n", res.stdout)
	assert.Len(t, w.list(t, "donations"), 1)

	res = w.run(t, "y\n", append([]string{"delete", "donations", rec.ID(), "--locale", "en"}, member...)...)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "Deleted\n", res.stdout)
	assert.Empty(t, w.list(t, "donations"))

	res = w.run(t, "", append([]string{"delete", "donations", rec.ID(), "--yes"}, member...)...)
	assert.Equal(t, exitUserError, res.code)
}

func TestDeleteNeedsIdentity(t *testing.T) {
	w := newWorkspace(t)
	rec := w.add(t, "donations", `{"donor":"Acme","amount":10}`, member...)

	res := w.run(t, "", "delete", "donations", rec.ID(), "--yes")
	assert.Equal(t, exitUserError, res.code)
	assert.Len(t, w.list(t, "donations"), 1)
}

func TestExport(t *testing.T) {
	w := newWorkspace(t)
	w.add(t, "fees", `{"date":"2024-01-01","member":"Acme","amount":50,"status":"Paid"}`, member...)
	w.add(t, "fees", `{"date":"2024-02-01","member":"Beta","amount":20,"status":"Pending"}`, member...)

	out := filepath.Join(t.TempDir(), "fees.csv")
	res := w.run(t, "", "export", "fees", "status=Pending", "-o", out, "--locale", "en")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Exported 1 record(s)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Date,"), lines[0])
	assert.Contains(t, lines[1], "Beta")

	res = w.run(t, "", "export", "fees", "--format", "jsonl")
	require.Equal(t, exitSuccess, res.code)
	assert.Len(t, strings.Split(strings.TrimSpace(res.stdout), "\n"), 2)

	res = w.run(t, "", "export", "fees", "--format", "xlsx")
	assert.Equal(t, exitUserError, res.code)

	res = w.run(t, "", "export", "fees", "amount=50")
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "not filterable")
}

func TestDump(t *testing.T) {
	w := newWorkspace(t)
	w.add(t, "fees", `{"member":"Acme","amount":50}`, member...)

	dir := filepath.Join(t.TempDir(), "out")
	res := w.run(t, "", "dump", "--dir", dir, "--json")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	var files []string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &files))
	assert.Len(t, files, 15)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 15)
}

func TestSummary(t *testing.T) {
	w := newWorkspace(t)
	w.add(t, "fees", `{"amount":100}`, member...)
	w.add(t, "donations", `{"amount":50}`, member...)
	w.add(t, "income_other", `{"amount":25}`, member...)
	w.add(t, "costs_operational", `{"amount":30}`, admin...)
	w.add(t, "costs_events", `{"amount":45}`, admin...)

	res := w.run(t, "", "summary", "--json")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	var s summary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &s))
	assert.Len(t, s.Lines, 7)
	assert.Equal(t, 175.0, s.Income)
	assert.Equal(t, 75.0, s.Costs)
	assert.Equal(t, 100.0, s.Balance)

	res = w.run(t, "", "summary", "--locale", "en")
	require.Equal(t, exitSuccess, res.code)
	assert.Contains(t, res.stdout, "Balance")
	assert.Contains(t, res.stdout, "100.00")
}

func TestToken(t *testing.T) {
	w := newWorkspace(t)

	res := w.run(t, "", "token", "--user", "ana")
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "auth.secret is not configured")

	const secret = "0123456789abcdef0123456789abcdef"
	t.Setenv("BOARDROOM_AUTH_SECRET", secret)

	res = w.run(t, "", "token")
	assert.Equal(t, exitUserError, res.code, "token needs a user")

	res = w.run(t, "", "token", "--user", "ana", "--role", "admin", "--ttl", "1h")
	require.Equal(t, exitSuccess, res.code, res.stderr)

	tokens, err := auth.NewTokens(secret, defaultIssuer, time.Hour)
	require.NoError(t, err)
	id, err := tokens.Validate(strings.TrimSpace(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, &types.Identity{UserID: "ana", Role: "admin"}, id)

	t.Setenv("BOARDROOM_AUTH_SECRET", "short")
	res = w.run(t, "", "token", "--user", "ana")
	assert.Equal(t, exitUserError, res.code)
}

func TestServeStopsOnCancel(t *testing.T) {
	w := newWorkspace(t)
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		root.SetArgs([]string{"--config-dir", w.configDir, "--data-dir", w.dataDir, "serve", "--listen", "127.0.0.1:0"})
		done <- exitCode(root.ExecuteContext(ctx))
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case code := <-done:
		assert.Equal(t, exitSuccess, code)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeRejectsBadSchedule(t *testing.T) {
	w := newWorkspace(t)
	t.Setenv("BOARDROOM_EXPORT_SCHEDULE", "not a schedule")
	res := w.run(t, "", "serve", "--listen", "127.0.0.1:0")
	assert.Equal(t, exitUserError, res.code)
	assert.Contains(t, res.stderr, "export.schedule")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(userError("bad %s", "input")))
	assert.Equal(t, exitSysError, exitCode(sysError("disk: %w", os.ErrPermission)))
	assert.Equal(t, exitUserError, exitCode(errors.New("unknown flag")))

	err := sysError("disk: %w", os.ErrPermission)
	assert.ErrorIs(t, err, os.ErrPermission)
}
