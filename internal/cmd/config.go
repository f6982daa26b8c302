package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/TWRT/task-analyzer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View task-analyzer configuration",
	Long: `View task-analyzer configuration.

Without arguments, displays the effective configuration after defaults,
the config file and TASK_ANALYZER_* environment variables are applied.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	settings := viper.AllSettings()
	delete(settings, "config")
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	fmt.Fprint(out, string(data))

	if _, err := config.Load(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%v\n", err)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, config.ConfigFile())
	if used := viper.ConfigFileUsed(); used != "" && used != config.ConfigFile() {
		fmt.Fprintf(out, "(currently using %s)\n", used)
	}
	return nil
}
