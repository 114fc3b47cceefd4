package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize boardroom storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.attachStore(false)
			if err != nil {
				return err
			}
			if err := store.Detach(); err != nil {
				return sysError("finalize storage: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Boardroom initialized in %s\n", store.DataDir())
			return nil
		},
	}
}
