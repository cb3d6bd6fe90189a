// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"runx-cli/internal/config"
	"runx-cli/internal/issue"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage runx configuration",
	Long: `Manage runx configuration.

Configuration is stored in:
  - Linux: ~/.config/runx/config.toml
  - macOS: ~/Library/Application Support/runx/config.toml
  - Windows: %APPDATA%\runx\config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	cfgPath, pathErr := configFilePath()
	if pathErr == nil && fileExistsCheck(cfgPath) {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("npm_path"), valueStyle.Render(orUnset(cfg.NpmPath)))
	fmt.Printf("%s: %s\n", keyStyle.Render("cache_dir"), valueStyle.Render(orUnset(cfg.CacheDir)))
	fmt.Printf("%s: %s\n", keyStyle.Render("always_spawn"), valueStyle.Render(fmt.Sprintf("%t", cfg.AlwaysSpawn)))
	fmt.Printf("%s: %s\n", keyStyle.Render("install.prompt"), valueStyle.Render(string(cfg.Install.Prompt)))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.quiet"), valueStyle.Render(fmt.Sprintf("%t", cfg.UI.Quiet)))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%t", cfg.UI.Verbose)))
	return nil
}

func initConfigFile() error {
	path, err := config.WriteDefault()
	if err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Created ") + path)
	return nil
}

func showConfigPath() error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func configFilePath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}

func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func orUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}
