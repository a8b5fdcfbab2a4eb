package cmd

import (
	"fmt"

	"pwsi/core/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type tabler interface {
	TableName() string
}

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the live columns of every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		for _, m := range models {
			table := m.(tabler).TableName()
			cols, err := database.GetTableColumns(rt.db.WithContext(cmd.Context()), table)
			if err != nil {
				return err
			}
			if len(cols) == 0 {
				rt.logger.Warn("Table is missing", zap.String("table", table))
				continue
			}
			fmt.Printf("\n=== %s ===\n", table)
			for _, c := range cols {
				null := ""
				if c.Nullable {
					null = " null"
				}
				fmt.Printf("  %-20s %s%s\n", c.Field, c.Type, null)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(schemaCmd)
}
