package cmd

import (
	"github.com/spf13/cobra"

	storeCmd "github.com/Alturino/medstore/store/cmd"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "serve",
		Annotations: autoBackupAnnotation,
		Short:       "Run the store http api",
		Args:        cobra.NoArgs,
		RunE:        func(cmd *cobra.Command, args []string) error {
			return storeCmd.RunStoreService(cmd.Context(), a.cfg, a.svc)
		},
	}
}
