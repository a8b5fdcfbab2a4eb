package cmd

import (
	"fmt"
	"sort"

	"pwsi/core/registry"

	"github.com/spf13/cobra"
)

// resourcesCmd represents the resources command
var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the resource names accepted by reset",
	Run: func(cmd *cobra.Command, args []string) {
		names := make([]string, len(registry.All))
		for i, n := range registry.All {
			names[i] = string(n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

func init() {
	RootCmd.AddCommand(resourcesCmd)
}
