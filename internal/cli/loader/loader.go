package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/samber/lo"
	"sigs.k8s.io/yaml"
)

// Format is an entity file extension, without the dot
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatYML  Format = "yml"
)

// SupportedFormats lists every format ParseFormats accepts
var SupportedFormats = []Format{FormatJSON, FormatYAML, FormatYML}

// ParseFormats checks the --format values. yaml and yml always travel together.
func ParseFormats(values []string) ([]Format, error) {
	if len(values) == 0 {
		return []Format{FormatJSON}, nil
	}

	formats := make([]Format, 0, len(values)+1)
	for _, value := range values {
		f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "."))
		if !slices.Contains(SupportedFormats, f) {
			return nil, fmt.Errorf("unsupported format %q, must be one of %v", value, SupportedFormats)
		}
		formats = append(formats, f)
		if f == FormatYAML || f == FormatYML {
			formats = append(formats, FormatYAML, FormatYML)
		}
	}
	return lo.Uniq(formats), nil
}

// formatOf returns the lowercased extension of path
func formatOf(path string) Format {
	return Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// Collect resolves sources into entity files. Directories are walked recursively and only
// files in the given formats are kept; explicit files in another format come back as skipped.
func Collect(sources []string, formats []Format) (files, skipped []string, err error) {
	for _, source := range sources {
		info, err := os.Stat(source)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot read source: %w", err)
		}

		if !info.IsDir() {
			if slices.Contains(formats, formatOf(source)) {
				files = append(files, filepath.Clean(source))
			} else {
				skipped = append(skipped, filepath.Clean(source))
			}
			continue
		}

		err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && slices.Contains(formats, formatOf(path)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to walk %s: %w", source, err)
		}
	}

	files = lo.Uniq(files)
	slices.Sort(files)
	return files, lo.Uniq(skipped), nil
}

// LoadFile reads one entity or a list of entities from a JSON or YAML file
func LoadFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if f := formatOf(path); f == FormatYAML || f == FormatYML {
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	var payload any
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}

	switch v := payload.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		raws := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("cannot be read as either a single or a list of entities")
			}
			raws = append(raws, m)
		}
		return raws, nil
	default:
		return nil, fmt.Errorf("cannot be read as either a single or a list of entities")
	}
}
