package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/95jonpet/pjsh/core"
	"github.com/95jonpet/pjsh/core/config"
)

var (
	cfgPath string
	command string
)

func loadConfig() (*config.Configuration, error) {
	return config.Load(afero.NewOsFs(), cfgPath)
}

// configDir returns the directory holding the configuration file.
func configDir() string {
	fs := afero.NewOsFs()
	if info, err := fs.Stat(cfgPath); err == nil && info.IsDir() {
		return cfgPath
	}
	return filepath.Dir(cfgPath)
}

// rootCmd runs the shell itself: interactive without arguments, a command
// string with -c, or a script file with optional arguments.
var rootCmd = &cobra.Command{
	Use:   "pjsh [SCRIPT [ARG...]]",
	Short: "A small non-POSIX shell",
	Long: `A command shell with pipelines, value filters, conditionals,
functions, and aliases.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		shell, err := core.NewShell(afero.NewOsFs(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer shell.Close()

		shell.SetEnviron(os.Environ())
		if wd, err := os.Getwd(); err == nil {
			shell.SetDir(wd)
		}

		var code int
		switch {
		case command != "":
			code, err = shell.RunCommand(command)
		case len(args) > 0:
			code, err = shell.RunScript(args[0], args[1:])
		default:
			shell.IsTerminal = func() bool { return true }
			code, err = shell.Interactive()
		}
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config path")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "execute a command string and exit")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "pjsh")
}
