package soft

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// ChangeKind says how a field differs between two entities
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Change is one difference, addressed by a dotted path such as "properties.a.description"
type Change struct {
	Kind ChangeKind
	Path string
	Old  string
	New  string
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return fmt.Sprintf("+ %s: %s", c.Path, c.New)
	case Removed:
		return fmt.Sprintf("- %s: %s", c.Path, c.Old)
	default:
		return fmt.Sprintf("~ %s: %s -> %s", c.Path, c.Old, c.New)
	}
}

// Diff lists the changes going from one entity to another, ordered by path
type Diff []Change

// Equal reports whether there are no changes
func (d Diff) Equal() bool {
	return len(d) == 0
}

func (d Diff) String() string {
	lines := make([]string, len(d))
	for i, c := range d {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

// Paths returns the path of every change
func (d Diff) Paths() []string {
	return lo.Map(d, func(c Change, _ int) string { return c.Path })
}

// Equal reports whether two canonical entities describe the same schema
func Equal(a, b *entity.Entity) bool {
	return Compare(a, b).Equal()
}

// Compare lists what changes going from a (typically the existing entity) to b.
// Both must be canonical; an empty description equals an absent one.
func Compare(a, b *entity.Entity) Diff {
	var d Diff
	changed := func(path, before, after string) {
		if before != after {
			d = append(d, Change{Kind: Changed, Path: path, Old: before, New: after})
		}
	}

	changed("uri", a.URI(), b.URI())
	changed("meta", a.Meta, b.Meta)
	changed("description", quote(a.Description), quote(b.Description))

	for _, name := range unionKeys(a.Dimensions, b.Dimensions) {
		path := "dimensions." + name
		oldDesc, inA := a.Dimensions[name]
		newDesc, inB := b.Dimensions[name]
		switch {
		case !inA:
			d = append(d, Change{Kind: Added, Path: path, New: quote(newDesc)})
		case !inB:
			d = append(d, Change{Kind: Removed, Path: path, Old: quote(oldDesc)})
		default:
			changed(path, quote(oldDesc), quote(newDesc))
		}
	}

	for _, name := range unionKeys(a.Properties, b.Properties) {
		path := "properties." + name
		oldProp, inA := a.Properties[name]
		newProp, inB := b.Properties[name]
		switch {
		case !inA:
			d = append(d, Change{Kind: Added, Path: path, New: formatProperty(newProp)})
		case !inB:
			d = append(d, Change{Kind: Removed, Path: path, Old: formatProperty(oldProp)})
		default:
			changed(path+".type", quote(oldProp.Type), quote(newProp.Type))
			if !slices.Equal(oldProp.Shape, newProp.Shape) {
				d = append(d, Change{Kind: Changed, Path: path + ".shape", Old: formatShape(oldProp.Shape), New: formatShape(newProp.Shape)})
			}
			changed(path+".unit", quote(oldProp.Unit), quote(newProp.Unit))
			changed(path+".description", quote(oldProp.Description), quote(newProp.Description))
			changed(path+".$ref", quote(oldProp.Ref), quote(newProp.Ref))
		}
	}

	return d
}

// UnifiedDiff renders a line diff of the two entities' canonical JSON documents
func UnifiedDiff(a, b *entity.Entity, fromName, toName string) (string, error) {
	left, err := sonic.ConfigStd.MarshalIndent(Dump(a), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", fromName, err)
	}
	right, err := sonic.ConfigStd.MarshalIndent(Dump(b), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", toName, err)
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(left) + "\n"),
		B:        difflib.SplitLines(string(right) + "\n"),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
}

func unionKeys[V any](a, b map[string]V) []string {
	keys := lo.Union(lo.Keys(a), lo.Keys(b))
	slices.Sort(keys)
	return keys
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

func formatShape(shape []string) string {
	return "[" + strings.Join(lo.Map(shape, func(dim string, _ int) string { return quote(dim) }), ", ") + "]"
}

func formatProperty(p entity.Property) string {
	parts := []string{"type=" + quote(p.Type)}
	if len(p.Shape) > 0 {
		parts = append(parts, "shape="+formatShape(p.Shape))
	}
	if p.Unit != "" {
		parts = append(parts, "unit="+quote(p.Unit))
	}
	if p.Description != "" {
		parts = append(parts, "description="+quote(p.Description))
	}
	if p.Ref != "" {
		parts = append(parts, "$ref="+quote(p.Ref))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
