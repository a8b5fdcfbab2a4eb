package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a snapshot of every resource to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		s, err := buildSite(rt)
		if err != nil {
			return err
		}
		if err := s.registry.SetupAll(ctx); err != nil {
			return fmt.Errorf("load resources: %w", err)
		}

		svc := newBackups(ctx, rt, s)
		if svc == nil {
			return errors.New("snapshot storage is not available")
		}
		report, err := svc.Run(ctx)
		if err != nil {
			return err
		}
		for _, o := range report.Objects {
			fmt.Printf("%-18s %8d  %s\n", o.Resource, o.Size, o.Key)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(backupCmd)
}
