package cmd

import (
	"fmt"

	"pwsi/core/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <resource>",
	Short: "Erase one resource and restore its defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := registry.Parse(args[0]); !ok {
			return fmt.Errorf("unknown resource %q, see the resources command", args[0])
		}

		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		s, err := buildSite(rt)
		if err != nil {
			return err
		}
		res, _ := s.registry.Lookup(args[0])
		if err := res.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset %s: %w", args[0], err)
		}
		rt.logger.Info("Resource reset", zap.String("resource", args[0]))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(resetCmd)
}
