package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/hms-api/internal/repository/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := postgres.NewMigrator(a.db).Up(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("Migrations applied", "count", n)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			statuses, err := postgres.NewMigrator(a.db).Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range statuses {
				applied := "pending"
				if s.Applied && s.AppliedAt != nil {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(out, "%03d  %-30s %s\n", s.Version, s.Name, applied)
			}
			return nil
		},
	})
	return cmd
}
