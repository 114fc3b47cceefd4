package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/boardroom/internal/export"
	"github.com/mesh-intelligence/boardroom/internal/modules"
)

func newExportCmd(a *app) *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "export <module> [key=value...]",
		Short: "Export the current view of a module",
		Long: `Export writes the filtered view of a module in its default order as a
spreadsheet (CSV with translated headers) or as JSON lines.

Example:
  boardroom export press_logs -o press.csv
  boardroom export fees status=Pending --format jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			filters, err := parseFilters(args[1:])
			if err != nil {
				return err
			}
			format, err := a.exportFormat(format)
			if err != nil {
				return err
			}

			store, err := a.attachStore(false)
			if err != nil {
				return err
			}
			defer store.Detach()

			sess, err := a.openModule(cmd.Context(), store, name)
			if err != nil {
				return err
			}
			defer sess.Close()
			if err := checkColumns(sess.Module(), filters, ""); err != nil {
				return err
			}
			for key, value := range filters {
				sess.SetFilter(key, value)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return sysError("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			records := sess.View()
			if err := export.Write(w, format, records, sess.Module().Schema, a.translator()); err != nil {
				return sysError("export %s: %w", name, err)
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d record(s) to %s\n", len(records), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "", "csv or jsonl (default: export.format from config)")
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	var dir, format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export every module to its own dated file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.exportFormat(format)
			if err != nil {
				return err
			}
			store, err := a.attachStore(false)
			if err != nil {
				return err
			}
			defer store.Detach()

			if dir == "" {
				dir = a.exportDir(store.DataDir())
			}
			files, err := export.Dump(cmd.Context(), store, modules.All(), export.DumpOptions{
				Dir:        dir,
				Format:     format,
				Now:        time.Now(),
				Translator: a.translator(),
				Logger:     a.log,
			})
			if err != nil {
				return sysError("dump: %w", err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), files)
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default: export.dir from config, else <data-dir>/exports)")
	cmd.Flags().StringVar(&format, "format", "", "csv or jsonl (default: export.format from config)")
	return cmd
}

// exportFormat returns flag, else the configured format, rejecting names
// export cannot write.
func (a *app) exportFormat(flag string) (string, error) {
	format := flag
	if format == "" {
		format = a.cfg.GetString(cfgKeyExportFormat)
	}
	switch format {
	case "", export.FormatCSV:
		return export.FormatCSV, nil
	case export.FormatJSONL:
		return format, nil
	}
	return "", userError("%w %q (valid: %s, %s)", export.ErrUnknownFormat, format, export.FormatCSV, export.FormatJSONL)
}

// exportDir returns the configured export directory or <dataDir>/exports.
func (a *app) exportDir(dataDir string) string {
	if dir := a.cfg.GetString(cfgKeyExportDir); dir != "" {
		return dir
	}
	return filepath.Join(dataDir, "exports")
}
