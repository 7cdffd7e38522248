package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SINTEF/entities-service/internal/cli/client"
	"github.com/SINTEF/entities-service/internal/cli/config"
	"github.com/SINTEF/entities-service/internal/cli/ui"
)

var (
	loginUsername string
	loginPassword string
)

// loginCmd is the login command
var loginCmd = &cobra.Command{
	Use:   "login [server]",
	Short: "authenticate with the entities service",
	Long: `Authenticate with the entities service and save the token locally.

The token is stored in ~/.entities-service/config.json and used by upload
until it expires or you login again.

If server is not provided, the configured server is used.`,
	Example: `  # Login to the configured server
  $ entities-service login

  # Login to another server with a username (will prompt for password)
  $ entities-service login https://entities.example.org -u admin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username for authentication")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted for when empty)")

	loginCmd.SilenceUsage = true
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	server := cfg.Server
	if len(args) > 0 {
		server = args[0]
	}

	if loginUsername == "" {
		if loginUsername, err = prompt.Input("Username:", ""); err != nil {
			ui.PrintError("failed to read username: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	password := loginPassword
	if password == "" {
		if password, err = prompt.Password("Password:"); err != nil {
			ui.PrintError("failed to read password: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	apiClient, err := client.NewAPIClient(server, "")
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Connecting to %s...", apiClient.Server())

	resp, err := apiClient.Login(ctx, loginUsername, password)
	if err != nil {
		ui.PrintErrorBox("Login Failed", err.Error())
		return fmt.Errorf("authentication failed")
	}

	cfg.Server = apiClient.Server()
	cfg.AccessToken = resp.Data.Token
	cfg.Username = loginUsername
	if resp.Data.User != nil {
		cfg.Username = resp.Data.User.Username
	}

	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	configPath, _ := config.GetConfigPath()
	ui.PrintSuccessBox("✓ Login Successful", fmt.Sprintf(`Username:       %s
Token expires:  %s
Config saved:   %s`,
		cfg.Username,
		resp.Data.Expire,
		configPath,
	))

	fmt.Println()
	ui.PrintInfo("You can now upload entities:")
	ui.PrintBold("  entities-service upload ./entities")

	return nil
}
