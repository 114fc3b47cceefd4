package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/boardroom/internal/form"
	"github.com/mesh-intelligence/boardroom/internal/shell"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// writeResult is the JSON output of add, update and delete.
type writeResult struct {
	State   form.State   `json:"state"`
	Message string       `json:"message"`
	Record  types.Record `json:"record,omitempty"`
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <module> <json>",
		Short: "Create a record from the module template",
		Long: `Add creates a record. Fields not given keep the module's template
defaults (today's date, first option of each list, zero amounts).

Example:
  boardroom add press_logs '{"outlet":"El Comercio","type":"Online","reach":"1.500"}'
  boardroom add meetings '{"title":"Assembly","attendees":["Ana","Luis","Ana"]}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSave(cmd, args[0], "", args[1])
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <module> <id> <json>",
		Short: "Change fields of an existing record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSave(cmd, args[0], args[1], args[2])
		},
	}
}

func (a *app) runSave(cmd *cobra.Command, name, id, body string) error {
	fields, err := parseFields(body)
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

	res, err := sess.Save(cmd.Context(), id, fields)
	switch {
	case errors.Is(err, shell.ErrReadOnly):
		return userError("%s is read-only", name)
	case errors.Is(err, types.ErrNotFound):
		return userError("record %q not found in %s", id, name)
	case err != nil:
		return sysError("save: %w", err)
	}
	return a.report(cmd.OutOrStdout(), res, res.State.MessageKey())
}

// report prints the outcome of a write and returns the error for states
// other than success and cancellation.
func (a *app) report(w io.Writer, res form.Result, key string) error {
	tr := a.translator()
	msg := tr.T(key)

	switch res.State {
	case form.StateSucceeded, form.StateCancelled:
		if a.flags.jsonMode {
			return writeJSON(w, writeResult{State: res.State, Message: msg, Record: res.Record})
		}
		if id := res.Record.ID(); id != "" {
			fmt.Fprintf(w, "%s: %s\n", msg, id)
		} else {
			fmt.Fprintln(w, msg)
		}
		return nil
	case form.StateNotReady, form.StateForbidden:
		return userError("%s", msg)
	}
	if res.Err != nil {
		return sysError("%s: %w", msg, res.Err)
	}
	return sysError("%s", msg)
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <module> <id>",
		Short: "Remove a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, id := args[0], args[1]

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

			if sess.Module().Merged {
				return userError("%s is read-only", name)
			}
			if _, ok := sess.Record(id); !ok {
				return userError("record %q not found in %s", id, name)
			}

			tr := a.translator()
			confirm := func() bool {
				if yes {
					return true
				}
				return askConfirm(cmd.InOrStdin(), cmd.ErrOrStderr(), tr.T("delete.confirm"))
			}
			res := sess.Delete(cmd.Context(), id, confirm)
			return a.report(cmd.OutOrStdout(), res, deleteMessageKey(res.State))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func deleteMessageKey(s form.State) string {
	switch s {
	case form.StateSucceeded:
		return "delete.done"
	case form.StateFailed:
		return "delete.failed"
	case form.StateCancelled:
		return "delete.cancelled"
	}
	return s.MessageKey()
}

// askConfirm prompts on w and reads a yes/no answer from r. Anything but
// y or yes declines.
func askConfirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}
