package commands

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/SINTEF/entities-service/internal/cli/client"
	"github.com/SINTEF/entities-service/internal/cli/config"
	"github.com/SINTEF/entities-service/internal/cli/types"
	"github.com/SINTEF/entities-service/internal/cli/ui"
	"github.com/SINTEF/entities-service/internal/soft"
)

// listCmd is the parent list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list namespaces and entities served by the service",
	Example: `  # Show the namespace tree
  $ entities-service list namespaces

  # List entities in the core namespace and one specific namespace
  $ entities-service list entities http://onto-ns.com/meta team/project`,
}

var listNamespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "show the namespaces holding entities as a tree",
	Args:  cobra.NoArgs,
	RunE:  runListNamespaces,
}

var listEntitiesCmd = &cobra.Command{
	Use:   "entities [NAMESPACE]...",
	Short: "list the entities of one or more namespaces",
	Long: `List entities as a table of namespace, name and version.

A NAMESPACE is a full namespace URL or a path below the base namespace.
Without arguments every entity is listed.`,
	RunE: runListEntities,
}

func init() {
	listCmd.AddCommand(listNamespacesCmd)
	listCmd.AddCommand(listEntitiesCmd)

	listNamespacesCmd.SilenceUsage = true
	listEntitiesCmd.SilenceUsage = true
}

// newPublicClient builds a client for the unauthenticated endpoints
func newPublicClient() (*config.Config, *client.APIClient, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, fmt.Errorf("config load failed")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, "")
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, fmt.Errorf("client creation failed")
	}
	return cfg, apiClient, nil
}

func runListNamespaces(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, apiClient, err := newPublicClient()
	if err != nil {
		return err
	}
	validator, err := cfg.Validator(false)
	if err != nil {
		ui.PrintError("invalid entity settings: %v", err)
		return fmt.Errorf("config invalid")
	}

	namespaces, err := apiClient.ListNamespaces(ctx)
	if err != nil {
		ui.PrintError("failed to list namespaces: %v", err)
		return fmt.Errorf("list operation failed")
	}

	fmt.Println(ui.RenderNamespaceTree(validator.BaseNamespace(), namespaces))
	return nil
}

func runListEntities(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, apiClient, err := newPublicClient()
	if err != nil {
		return err
	}

	docs, err := apiClient.ListEntities(ctx, args)
	if err != nil {
		ui.PrintError("failed to list entities: %v", err)
		return fmt.Errorf("list operation failed")
	}

	rows := entityRows(docs)
	if len(rows) == 0 {
		ui.PrintWarning("No entities found")
		return nil
	}

	fmt.Println(ui.RenderEntityTable(rows, false))
	fmt.Println(ui.Styles.Muted.Render(fmt.Sprintf("%d entities", len(rows))))
	return nil
}

// entityRows reads the identity of each served document, skipping any without a parsable uri
func entityRows(docs []types.Document) []ui.EntityRow {
	rows := lo.FilterMap(docs, func(doc types.Document, _ int) (ui.EntityRow, bool) {
		uri, _ := doc["uri"].(string)
		id, err := soft.ParseIdentity(uri)
		if err != nil {
			return ui.EntityRow{}, false
		}
		return ui.EntityRow{Namespace: id.Namespace, Name: id.Name, Version: id.Version}, true
	})

	slices.SortFunc(rows, func(a, b ui.EntityRow) int {
		return cmp.Or(
			strings.Compare(a.Namespace, b.Namespace),
			strings.Compare(a.Name, b.Name),
			strings.Compare(a.Version, b.Version),
		)
	})
	return rows
}
