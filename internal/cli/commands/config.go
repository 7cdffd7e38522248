package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/SINTEF/entities-service/internal/cli/config"
	"github.com/SINTEF/entities-service/internal/cli/ui"
)

// configCmd is the parent config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "show or change the CLI settings",
	Example: `  # Show the current settings
  $ entities-service config show

  # Point the CLI at another deployment
  $ entities-service config set server https://entities.example.org
  $ entities-service config set base_url https://entities.example.org/meta`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:       "set KEY VALUE",
	Short:     "set a setting",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE:      runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:       "unset KEY",
	Short:     "restore a setting to its default",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys,
	RunE:      runConfigUnset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)

	for _, c := range []*cobra.Command{configShowCmd, configSetCmd, configUnsetCmd} {
		c.SilenceUsage = true
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	values := make(map[string]string, len(config.Keys)+2)
	for _, key := range config.Keys {
		values[key], _ = cfg.Get(key)
	}
	values["username"] = cfg.Username
	values["access_token"] = "(not set)"
	if cfg.IsAuthenticated() {
		values["access_token"] = "(set)"
	}

	path, _ := config.GetConfigPath()
	fmt.Println(ui.RenderKeyValueTable(slices.Concat(config.Keys, []string{"username", "access_token"}), values))
	fmt.Println(ui.Styles.Muted.Render(path))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	return updateConfig(func(cfg *config.Config) error {
		return cfg.Set(args[0], args[1])
	}, "Set %s", args[0])
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	return updateConfig(func(cfg *config.Config) error {
		return cfg.Unset(args[0])
	}, "Unset %s", args[0])
}

func updateConfig(change func(cfg *config.Config) error, format string, args ...any) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	if err := change(cfg); err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("invalid setting")
	}

	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	ui.PrintSuccess(format, args...)
	return nil
}
