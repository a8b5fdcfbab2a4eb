package cmd

import (
	"fmt"
	"os"

	"pwsi/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// envDir is where the .env file is looked up.
var envDir string

// RootCmd is the pwsi command; every subcommand shares the same config.
var RootCmd = &cobra.Command{
	Use:   "pwsi",
	Short: "Streamer site backend",
	Long: `pwsi serves the streamer site API: anime, games, auctions, marathons,
merch and the other lists, cached in memory and kept in step with the database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	// Commands fail before the configured logger exists, so report on a
	// console logger.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l.Error("Command failed", zap.String("command", commandPath()), zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

func commandPath() string {
	cmd, _, err := RootCmd.Find(os.Args[1:])
	if err != nil || cmd == nil {
		return RootCmd.Name()
	}
	return cmd.CommandPath()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envDir, "env-dir", ".", "directory holding the .env file")
}
