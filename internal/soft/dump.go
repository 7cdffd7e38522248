package soft

import (
	"github.com/SINTEF/entities-service/internal/domain/entity"
)

// Dump renders the canonical wire form of an entity.
// "dimensions" is always present; "description" is omitted when empty.
func Dump(e *entity.Entity) map[string]any {
	return dump(e, "$ref")
}

// DumpForUpload is Dump with every "$ref" key renamed to "ref", the form the admin API stores
func DumpForUpload(e *entity.Entity) map[string]any {
	return dump(e, "ref")
}

func dump(e *entity.Entity, refKey string) map[string]any {
	dims := make(map[string]any, len(e.Dimensions))
	for name, desc := range e.Dimensions {
		dims[name] = desc
	}

	props := make(map[string]any, len(e.Properties))
	for name, p := range e.Properties {
		rec := map[string]any{"type": p.Type}
		if len(p.Shape) > 0 {
			shape := make([]any, len(p.Shape))
			for i, d := range p.Shape {
				shape[i] = d
			}
			rec["shape"] = shape
		}
		if p.Unit != "" {
			rec["unit"] = p.Unit
		}
		if p.Description != "" {
			rec["description"] = p.Description
		}
		if p.Ref != "" {
			rec[refKey] = p.Ref
		}
		props[name] = rec
	}

	out := map[string]any{
		"uri":        e.URI(),
		"meta":       e.Meta,
		"dimensions": dims,
		"properties": props,
	}
	if e.Description != "" {
		out["description"] = e.Description
	}
	return out
}
