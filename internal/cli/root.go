// Package cli implements the boardroom command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/boardroom/internal/i18n"
	"github.com/mesh-intelligence/boardroom/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	user      string
	role      string
	locale    string
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags   rootFlags
	cfg     *viper.Viper
	log     *slog.Logger
	catalog *i18n.Catalog
}

// exitError carries the exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError reports bad input: an unknown module, a malformed argument, a
// write the identity may not make.
func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// sysError reports a failure of the environment: storage, files, network.
func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors from cobra.
	return exitUserError
}

// NewRootCmd creates the top-level "boardroom" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "boardroom",
		Short: "Administrative dashboard for an advocacy organization",
		Long: "Boardroom keeps the activity, press, stakeholder, finance and governance\n" +
			"records of an organization and serves them as filterable, sortable views.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.user, "user", "", "acting user id (env BOARDROOM_USER)")
	pf.StringVar(&a.flags.role, "role", "", "acting user role (env BOARDROOM_ROLE)")
	pf.StringVar(&a.flags.locale, "locale", "", "display locale, e.g. es or en")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newModulesCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newDumpCmd(a),
		newSummaryCmd(a),
		newTokenCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError("load config: %w", err)
	}
	a.cfg = cfg
	a.log = NewLogger(LogConfig{
		Level:  cfg.GetString(cfgKeyLogLevel),
		Format: cfg.GetString(cfgKeyLogFormat),
	}, cmd.ErrOrStderr())
	a.catalog = i18n.Default()
	return nil
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:]))
}

func run(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return exitCode(err)
}
