package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alturino/medstore/internal/gate"
)

func newHashPasswordCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "hash-password <password>",
		Short:       "Print a bcrypt hash for application.password_hash",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationSkipSession: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := gate.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}
}
