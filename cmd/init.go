package cmd

import (
	"log"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/95jonpet/pjsh/core/config"
)

// initCmd creates the configuration directory with default contents.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the shell configuration directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		_, err := config.Initialize(afero.NewOsFs(), configDir(), logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
