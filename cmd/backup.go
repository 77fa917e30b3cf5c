package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Alturino/medstore/internal/backup"
)

func newBackupCommand(a *app) *cobra.Command {
	var kind string
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.svc.Backup(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s\n", path)
			return nil
		},
	}
	backupCmd.Flags().StringVar(&kind, "kind", backup.KindManual, "backup kind")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.svc.Backups(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tKIND\tSIZE\tPATH\t")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Size, e.Path)
			}
			return w.Flush()
		},
	}
	backupCmd.AddCommand(listCmd)
	return backupCmd
}
