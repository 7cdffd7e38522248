package commands

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/SINTEF/entities-service/internal/cli/client"
	"github.com/SINTEF/entities-service/internal/cli/config"
	"github.com/SINTEF/entities-service/internal/cli/loader"
	"github.com/SINTEF/entities-service/internal/cli/types"
	"github.com/SINTEF/entities-service/internal/cli/ui"
	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/soft"
)

// errValidationFailed is returned once every problem has been reported
var errValidationFailed = errors.New("validation failed")

type validateOptions struct {
	formats         []string
	failFast        bool
	quiet           bool
	verbose         bool
	noExternalCalls bool
	strict          bool
	strictShapes    bool
}

var validateOpts validateOptions

// validateCmd is the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [SOURCE]...",
	Short: "validate local entities",
	Long: `Validate SOFT5 and SOFT7 entities stored in local files.

A SOURCE is a file or a directory. Directories are searched recursively for
files in the selected format(s). Each file holds one entity or a list of entities.

Unless --no-external-calls is given, every valid entity is compared with the
copy the service already serves at its URI.`,
	Example: `  # Validate a single file
  $ entities-service validate entity.json

  # Validate every JSON and YAML file below a directory
  $ entities-service validate ./entities --format json --format yaml

  # Show how local entities differ from the served ones
  $ entities-service validate ./entities -v`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	addValidationFlags(validateCmd, &validateOpts)
	validateCmd.Flags().BoolVarP(&validateOpts.verbose, "verbose", "v", false, "Print the differences between remote and local entities")
	validateCmd.Flags().BoolVar(&validateOpts.noExternalCalls, "no-external-calls", false, "Do not compare with the entities served remotely")

	validateCmd.SilenceUsage = true
}

// addValidationFlags registers the flags validate and upload share
func addValidationFlags(cmd *cobra.Command, opts *validateOptions) {
	cmd.Flags().StringSliceVar(&opts.formats, "format", []string{string(loader.FormatJSON)}, "Format of entity files: json, yaml, yml (repeatable)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Stop at the first error")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print anything on success")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when an entity differs from the one served remotely")
	cmd.Flags().BoolVar(&opts.strictShapes, "strict-shapes", false, "Require shape entries to name declared dimensions")
}

// entityFetcher fetches the served copy of an entity, found is false when there is none
type entityFetcher interface {
	GetEntity(ctx context.Context, path string) (doc types.Document, found bool, err error)
}

// checkedEntity is a valid local entity and how it compares with the served copy.
// exists and equal are nil when no comparison was made.
type checkedEntity struct {
	entity  *entity.Entity
	source  string
	exists  *bool
	equal   *bool
	changes string // per-field breakdown, one change per line
	diff    string // unified diff of the documents
}

type validationReport struct {
	entities       []*checkedEntity
	failedFiles    []string
	failedEntities []string
}

func (r *validationReport) failed() bool {
	return len(r.failedFiles) > 0 || len(r.failedEntities) > 0
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateOpts.strict && validateOpts.noExternalCalls {
		ui.PrintError("--strict cannot be combined with --no-external-calls")
		return fmt.Errorf("invalid flags")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	validator, err := cfg.Validator(validateOpts.strictShapes)
	if err != nil {
		ui.PrintError("invalid entity settings: %v", err)
		return fmt.Errorf("config invalid")
	}

	var remote entityFetcher
	if !validateOpts.noExternalCalls {
		apiClient, err := client.NewAPIClient(cfg.Server, "")
		if err != nil {
			ui.PrintError("failed to create client: %v", err)
			return fmt.Errorf("client creation failed")
		}
		remote = apiClient
	} else if !validateOpts.quiet {
		ui.PrintInfo("No external calls will be made to validate the entities.")
	}

	report, err := validateSources(ctx, validator, remote, args, validateOpts)
	if err != nil {
		if !errors.Is(err, errValidationFailed) {
			ui.PrintError("%v", err)
		}
		return err
	}

	printReport(report, validateOpts)
	if report.failed() {
		return errValidationFailed
	}
	return nil
}

// validateSources loads, validates and compares every entity in the sources.
// It returns errValidationFailed early only under --fail-fast; otherwise failures are collected in the report.
func validateSources(ctx context.Context, v *soft.Validator, remote entityFetcher, sources []string, opts validateOptions) (*validationReport, error) {
	formats, err := loader.ParseFormats(opts.formats)
	if err != nil {
		return nil, err
	}

	files, skipped, err := loader.Collect(sources, formats)
	if err != nil {
		return nil, err
	}
	if !opts.quiet {
		for _, path := range skipped {
			ui.PrintInfo("Skipping file: %s (add --format=%s to include it)", path, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found with the given options")
	}

	report := &validationReport{}
	seen := make(map[string]string)

	for _, path := range files {
		raws, err := loader.LoadFile(path)
		if err != nil {
			ui.PrintError("%s: %v", path, err)
			if opts.failFast {
				return report, errValidationFailed
			}
			report.failedFiles = append(report.failedFiles, path)
			continue
		}

		for i, raw := range raws {
			e, _, err := v.ValidateAny(raw)
			if err != nil {
				ui.PrintError("%s contains an invalid SOFT entity (item %d):\n\n%s\n", path, i, formatEngineError(err))
				if opts.failFast {
					return report, errValidationFailed
				}
				report.failedFiles = append(report.failedFiles, path)
				continue
			}

			uri := e.URI()
			if first, dup := seen[uri]; dup {
				ui.PrintError("Duplicate URI found: %s (in %s and %s)", uri, first, path)
				if opts.failFast {
					return report, errValidationFailed
				}
				report.failedFiles = append(report.failedFiles, path)
				report.failedEntities = append(report.failedEntities, uri)
				continue
			}
			seen[uri] = path
			report.entities = append(report.entities, &checkedEntity{entity: e, source: path})
		}
	}

	if remote != nil {
		for _, checked := range report.entities {
			if err := compareWithRemote(ctx, v, remote, checked); err != nil {
				return nil, fmt.Errorf("could not check if entity already exists: %w", err)
			}
			if opts.strict && *checked.exists && !*checked.equal {
				ui.PrintError("Entity differs from the one served remotely: %s\n%s", checked.entity.URI(), indent(checked.changes))
				if opts.failFast {
					return report, errValidationFailed
				}
				report.failedEntities = append(report.failedEntities, checked.entity.URI())
			}
		}
	}

	report.failedFiles = lo.Uniq(report.failedFiles)
	report.failedEntities = lo.Uniq(report.failedEntities)
	return report, nil
}

// compareWithRemote fills exists, equal and diff from the served copy
func compareWithRemote(ctx context.Context, v *soft.Validator, remote entityFetcher, checked *checkedEntity) error {
	doc, found, err := remote.GetEntity(ctx, remotePath(checked.entity, v.BaseNamespace()))
	if err != nil {
		return err
	}

	checked.exists = lo.ToPtr(found)
	if !found {
		return nil
	}

	served, _, err := v.ValidateAny(doc)
	if err != nil {
		checked.equal = lo.ToPtr(false)
		checked.changes = fmt.Sprintf("the served entity is not valid:\n%s", formatEngineError(err))
		return nil
	}

	changes := soft.Compare(served, checked.entity)
	checked.equal = lo.ToPtr(changes.Equal())
	if !*checked.equal {
		checked.changes = changes.String()
		diff, err := soft.UnifiedDiff(served, checked.entity, "remote", "local")
		if err != nil {
			return err
		}
		checked.diff = diff
	}
	return nil
}

// remotePath is where the service serves e, relative to the server
func remotePath(e *entity.Entity, base string) string {
	path := e.Identity.Version + "/" + e.Identity.Name
	if specific := e.Identity.SpecificNamespace(base); specific != "" {
		path = specific + "/" + path
	}
	return path
}

// formatEngineError lists every field error, grouped per flavor attempt
func formatEngineError(err error) string {
	attempts := soft.Attempts(err)
	if len(attempts) == 0 {
		return "  " + err.Error()
	}

	var b strings.Builder
	for _, attempt := range attempts {
		fmt.Fprintf(&b, "  as %s:\n", attempt.Flavor)
		for _, fe := range attempt.Errors {
			fmt.Fprintf(&b, "    - %s\n", fe.Error())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func printReport(report *validationReport, opts validateOptions) {
	if report.failed() {
		ui.PrintError("Failed to validate one or more entities. See above for more details.")
		if len(report.failedFiles) > 0 {
			ui.PrintBold("Files:\n  %s", strings.Join(report.failedFiles, "\n  "))
		}
		if len(report.failedEntities) > 0 {
			ui.PrintBold("Entities:\n  %s", strings.Join(report.failedEntities, "\n  "))
		}
	}

	if opts.quiet {
		return
	}

	if len(report.entities) == 0 {
		ui.PrintWarning("There were no valid entities among the supplied sources.")
		return
	}

	ui.PrintRule("Valid Entities")
	fmt.Println(ui.RenderEntityTable(validationRows(report.entities, opts.noExternalCalls), true))

	differing := lo.Filter(report.entities, func(c *checkedEntity, _ int) bool { return c.changes != "" })
	if len(differing) == 0 {
		return
	}
	if !opts.verbose {
		fmt.Println()
		ui.PrintInfo("Use the option '--verbose' to see the differences between the remote and local entities.")
		return
	}
	fmt.Println()
	ui.PrintInfo("Detailed differences in validated entities:")
	for _, c := range differing {
		printDifference(c)
	}
}

// printDifference prints the per-field changes of c, then the document diff when there is one
func printDifference(c *checkedEntity) {
	ui.PrintRule(c.entity.URI())
	fmt.Println(indent(c.changes))
	if c.diff != "" {
		fmt.Println()
		fmt.Println(ui.RenderDiff(c.diff))
	}
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}

// validationRows sorts by namespace, name and version
func validationRows(entities []*checkedEntity, noExternalCalls bool) []ui.EntityRow {
	sorted := slices.Clone(entities)
	slices.SortFunc(sorted, func(a, b *checkedEntity) int {
		return compareIdentity(a.entity.Identity, b.entity.Identity)
	})

	unknown := "-"
	if noExternalCalls {
		unknown = "Unknown"
	}
	yesNo := func(b *bool, absent string) string {
		switch {
		case b == nil:
			return absent
		case *b:
			return "Yes"
		default:
			return "No"
		}
	}

	return lo.Map(sorted, func(c *checkedEntity, _ int) ui.EntityRow {
		return ui.EntityRow{
			Namespace: c.entity.Identity.Namespace,
			Name:      c.entity.Identity.Name,
			Version:   c.entity.Identity.Version,
			Exists:    yesNo(c.exists, "Unknown"),
			Equal:     yesNo(c.equal, unknown),
		}
	})
}

func compareIdentity(a, b entity.Identity) int {
	return cmp.Or(
		strings.Compare(a.Namespace, b.Namespace),
		strings.Compare(a.Name, b.Name),
		strings.Compare(a.Version, b.Version),
	)
}
