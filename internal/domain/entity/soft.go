package entity

import (
	"maps"
	"slices"
	"strings"
)

// Identity locates an entity as {namespace}/{version}/{name}
type Identity struct {
	Namespace string
	Version   string
	Name      string
}

// String returns the canonical identity (the entity URI)
func (i Identity) String() string {
	return i.Namespace + "/" + i.Version + "/" + i.Name
}

// IsZero reports whether no component is set
func (i Identity) IsZero() bool {
	return i.Namespace == "" && i.Version == "" && i.Name == ""
}

// SpecificNamespace returns the namespace path below base, or "" for the core namespace
func (i Identity) SpecificNamespace(base string) string {
	base = strings.TrimRight(base, "/")
	if i.Namespace == base {
		return ""
	}
	return strings.TrimPrefix(i.Namespace, base+"/")
}

// Property is a named, typed field of an entity
type Property struct {
	Type        string
	Shape       []string // dimension names, empty for scalars
	Unit        string
	Description string
	Ref         string // target identity when Type is "ref"
}

// Entity is the canonical form of a SOFT entity; it carries no wire format
type Entity struct {
	Identity    Identity
	Meta        string
	Description string
	Dimensions  map[string]string
	Properties  map[string]Property
}

// URI returns the entity identity string
func (e *Entity) URI() string {
	return e.Identity.String()
}

// Clone returns a deep copy of the entity
func (e *Entity) Clone() *Entity {
	out := *e
	out.Dimensions = maps.Clone(e.Dimensions)
	if out.Dimensions == nil {
		out.Dimensions = map[string]string{}
	}
	out.Properties = make(map[string]Property, len(e.Properties))
	for name, prop := range e.Properties {
		prop.Shape = slices.Clone(prop.Shape)
		out.Properties[name] = prop
	}
	return &out
}
