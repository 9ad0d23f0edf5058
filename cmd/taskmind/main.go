package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmindbot/taskmind/internal/config"
)

var version = "0.1.0"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskmind",
		Short: "Conversational task manager for Telegram",
		Long:  `Taskmind is a Telegram bot that turns plain-language messages into tasks, habits, and reminders.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.taskmind/config.yaml)")

	rootCmd.AddCommand(
		newStartCmd(),
		newTasksCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configPath returns the config file to use.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}

			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Printf("🔧 Wrote default config to %s\n", path)
			fmt.Println("   Set telegram.token before running `taskmind start`.")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show Taskmind version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Taskmind v%s\n", version)
		},
	}
}
