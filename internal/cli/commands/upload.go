package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/SINTEF/entities-service/internal/cli/client"
	"github.com/SINTEF/entities-service/internal/cli/config"
	"github.com/SINTEF/entities-service/internal/cli/types"
	"github.com/SINTEF/entities-service/internal/cli/ui"
	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/soft"
)

var (
	uploadOpts        validateOptions
	uploadAutoConfirm bool
)

// uploadCmd is the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload [SOURCE]...",
	Short: "upload local entities to the service",
	Long: `Validate local entities and upload the new ones.

Entities already served unchanged are skipped. Served entities cannot be
overwritten: when a local entity differs from the served one you are asked
for a new version number instead.`,
	Example: `  # Upload every JSON entity below a directory
  $ entities-service upload ./entities

  # Accept every default without asking
  $ entities-service upload ./entities -y`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	addValidationFlags(uploadCmd, &uploadOpts)
	uploadCmd.Flags().BoolVarP(&uploadAutoConfirm, "auto-confirm", "y", false, "Agree to every confirmation and use the default new versions")

	uploadCmd.SilenceUsage = true
}

// entityUploader is the part of the API client upload needs
type entityUploader interface {
	entityFetcher
	CreateEntities(ctx context.Context, docs []types.Document) ([]types.Document, error)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	if !cfg.IsAuthenticated() {
		ui.PrintError("not authenticated, please login first")
		fmt.Println("\nRun 'entities-service login' to authenticate.")
		return fmt.Errorf("authentication required")
	}

	validator, err := cfg.Validator(uploadOpts.strictShapes)
	if err != nil {
		ui.PrintError("invalid entity settings: %v", err)
		return fmt.Errorf("config invalid")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, cfg.AccessToken)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	return uploadSources(ctx, validator, apiClient, args, uploadOpts, uploadAutoConfirm)
}

func uploadSources(ctx context.Context, v *soft.Validator, api entityUploader, sources []string, opts validateOptions, autoConfirm bool) error {
	opts.noExternalCalls = false
	report, err := validateSources(ctx, v, api, sources, opts)
	if err != nil {
		if !errors.Is(err, errValidationFailed) {
			ui.PrintError("%v", err)
		}
		return err
	}
	if report.failed() {
		printReport(report, opts)
		return errValidationFailed
	}

	useDefaults := opts.quiet || autoConfirm
	var (
		uploads []*entity.Entity
		failed  []string
	)

	for _, checked := range report.entities {
		e := checked.entity
		if checked.exists == nil || !*checked.exists {
			uploads = append(uploads, e)
			continue
		}
		if *checked.equal {
			if !opts.quiet {
				ui.PrintInfo("Entity already exists remotely. Skipping entity: %s", e.URI())
			}
			continue
		}

		if !opts.quiet {
			ui.PrintInfo("Entity already exists remotely, but it differs in its content.")
			printDifference(checked)
			fmt.Println()
		}

		bumped, err := bumpVersion(e, useDefaults, opts.quiet)
		if err != nil {
			ui.PrintError("Could not update entity %s: %v", e.URI(), err)
			if opts.failFast {
				return errValidationFailed
			}
			failed = append(failed, e.URI())
			continue
		}
		if bumped == nil {
			if !opts.quiet {
				ui.PrintInfo("Skipping entity: %s", e.URI())
			}
			continue
		}
		uploads = append(uploads, bumped)
	}

	if len(uploads) == 0 {
		if !opts.quiet {
			ui.PrintInfo("There are no entities to upload.")
		}
		if len(failed) > 0 {
			return errValidationFailed
		}
		return nil
	}

	if !opts.quiet {
		ui.PrintRule("Entities to upload")
		fmt.Println(ui.RenderEntityTable(lo.Map(uploads, func(e *entity.Entity, _ int) ui.EntityRow {
			return ui.EntityRow{Namespace: e.Identity.Namespace, Name: e.Identity.Name, Version: e.Identity.Version}
		}), false))
		fmt.Println()
	}
	if !useDefaults {
		proceed, err := prompt.Confirm(fmt.Sprintf("Upload %d entities?", len(uploads)), true)
		if err != nil {
			ui.PrintError("Upload cancelled: %v", err)
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !proceed {
			ui.PrintInfo("Upload cancelled.")
			return nil
		}
	}

	docs := lo.Map(uploads, func(e *entity.Entity, _ int) types.Document { return soft.DumpForUpload(e) })
	if _, err := api.CreateEntities(ctx, docs); err != nil {
		printUploadError(err)
		return fmt.Errorf("upload failed")
	}

	if !opts.quiet {
		ui.PrintSuccess("Successfully uploaded %d entities", len(uploads))
	}
	if len(failed) > 0 {
		ui.PrintError("Failed to upload:\n  %s", strings.Join(failed, "\n  "))
		return errValidationFailed
	}
	return nil
}

// bumpVersion asks for a new version of e. A nil entity means the user chose to skip it.
func bumpVersion(e *entity.Entity, useDefaults, quiet bool) (*entity.Entity, error) {
	next, nextErr := soft.NextVersion(e.Identity.Version)

	if !useDefaults {
		update, err := prompt.Confirm("You cannot overwrite remote existing entities. Do you wish to upload the new entity with an updated version number?", true)
		if err != nil {
			return nil, fmt.Errorf("could not ask for a new version: %w", err)
		}
		if !update {
			return nil, nil
		}
	}

	var version string
	switch {
	case useDefaults:
		if nextErr != nil {
			return nil, nextErr
		}
		version = next
		if !quiet {
			ui.PrintInfo("Updating the to-be-uploaded entity to version: %s", version)
		}
	default:
		answer, err := prompt.Input(fmt.Sprintf("The remote entity's version is %q. Please enter the new version", e.Identity.Version), next)
		if err != nil {
			return nil, fmt.Errorf("could not read the new version: %w", err)
		}
		version = answer
	}

	if version == e.Identity.Version {
		return nil, fmt.Errorf("new version (%s) is the same as the existing version", version)
	}
	if !soft.IsSOFTVersion(version) {
		return nil, fmt.Errorf("new version (%s) is not a valid SOFT version", version)
	}
	return soft.WithVersion(e, version), nil
}

func printUploadError(err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		ui.PrintErrorBox("Upload Failed", err.Error())
		return
	}

	content := apiErr.Message
	for _, d := range apiErr.Details {
		content += fmt.Sprintf("\n• [%d] %s %s: %s", d.Index, d.Field, d.Kind, d.Message)
	}
	ui.PrintErrorBox(fmt.Sprintf("Upload Failed (HTTP %d)", apiErr.Status), content)
}
