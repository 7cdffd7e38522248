package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	namespaceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)      // Cyan
	segmentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))                 // Blue
	enumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginRight(1) // Gray
)

// EntityRow is one line of an entity table
type EntityRow struct {
	Namespace string
	Name      string
	Version   string
	Exists    string // validate only
	Equal     string // validate only
}

// RenderEntityTable renders namespace/name/version rows; the remote columns are shown when withRemote is set.
// Repeated namespaces and names are blanked and every namespace starts a new section.
func RenderEntityTable(rows []EntityRow, withRemote bool) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Format.Header = text.FormatDefault

	header := table.Row{"Namespace", "Name", "Version"}
	if withRemote {
		header = append(header, "Exists remotely", "Equal to remote")
	}
	t.AppendHeader(header)

	var lastNamespace, lastName string
	for i, r := range rows {
		namespace, name := r.Namespace, r.Name
		if namespace == lastNamespace {
			namespace = ""
			if name == lastName {
				name = ""
			}
		} else if i > 0 {
			t.AppendSeparator()
		}

		row := table.Row{namespace, name, r.Version}
		if withRemote {
			row = append(row, r.Exists, r.Equal)
		}
		t.AppendRow(row)
		lastNamespace, lastName = r.Namespace, r.Name
	}

	return t.Render()
}

// RenderKeyValueTable renders settings as a two column table
func RenderKeyValueTable(keys []string, values map[string]string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, values[k]})
	}
	return t.Render()
}

// RenderNamespaceTree renders namespace URLs as a tree rooted at the base namespace
func RenderNamespaceTree(base string, namespaces []string) string {
	base = strings.TrimRight(base, "/")
	root := tree.Root(namespaceStyle.Render(base)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumeratorStyle)

	nodes := map[string]*tree.Tree{"": root}
	specifics := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		if specific := strings.Trim(strings.TrimPrefix(ns, base), "/"); specific != "" && ns != base {
			specifics = append(specifics, specific)
		}
	}
	slices.Sort(specifics)

	for _, specific := range specifics {
		parent := ""
		for _, segment := range strings.Split(specific, "/") {
			path := strings.TrimPrefix(parent+"/"+segment, "/")
			if _, ok := nodes[path]; !ok {
				node := tree.Root(segmentStyle.Render(segment))
				nodes[parent].Child(node)
				nodes[path] = node
			}
			parent = path
		}
	}

	return root.String()
}

// RenderDiff colours a unified diff
func RenderDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = Styles.Bold.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = Styles.DiffHunk.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = Styles.DiffAdd.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = Styles.DiffRemove.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
