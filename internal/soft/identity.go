package soft

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseIdentity splits an identity string into namespace, version and name.
// Only structural rules are applied; the namespace is not checked against any base.
func ParseIdentity(s string) (entity.Identity, error) {
	id, fe := parseIdentity("uri", s)
	if fe != nil {
		return entity.Identity{}, fe
	}
	return id, nil
}

func parseIdentity(field, s string) (entity.Identity, *FieldError) {
	malformed := func(format string, args ...any) *FieldError {
		return newFieldError(KindMalformedIdentity, field, "%q: %s", s, fmt.Sprintf(format, args...))
	}

	i := strings.LastIndex(s, "/")
	if i < 0 {
		return entity.Identity{}, malformed("expected {namespace}/{version}/{name}")
	}
	name, rest := s[i+1:], s[:i]
	j := strings.LastIndex(rest, "/")
	if j < 0 {
		return entity.Identity{}, malformed("expected {namespace}/{version}/{name}")
	}
	version, namespace := rest[j+1:], rest[:j]

	if name == "" || version == "" || namespace == "" {
		return entity.Identity{}, malformed("namespace, version and name must all be non-empty")
	}
	if !namePattern.MatchString(name) {
		return entity.Identity{}, malformed("name %q may only contain letters, digits, underscores and hyphens", name)
	}
	if strings.ContainsAny(version, " \t\r\n?#") {
		return entity.Identity{}, malformed("version %q contains illegal characters", version)
	}
	if err := checkNamespace(namespace); err != nil {
		return entity.Identity{}, malformed("%v", err)
	}

	return entity.Identity{Namespace: namespace, Version: version, Name: name}, nil
}

// checkNamespace applies the URL rules shared by entity namespaces and the base namespace
func checkNamespace(ns string) error {
	if strings.Contains(ns, "$") {
		return fmt.Errorf("namespace %q must not contain '$'", ns)
	}
	if strings.ContainsAny(ns, " \t\r\n?#") {
		return fmt.Errorf("namespace %q contains characters not allowed in a URL path", ns)
	}
	u, err := url.Parse(ns)
	if err != nil {
		return fmt.Errorf("namespace %q is not a valid URL: %v", ns, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("namespace %q must be an absolute http(s) URL", ns)
	}
	if strings.Contains(u.Path, "//") || strings.HasSuffix(u.Path, "/") {
		return fmt.Errorf("namespace %q contains an empty path segment", ns)
	}
	return nil
}

// InNamespace reports whether ns equals base or lies below it
func InNamespace(ns, base string) bool {
	base = strings.TrimRight(base, "/")
	return ns == base || strings.HasPrefix(ns, base+"/")
}

// ResolveNamespace turns a full namespace URL or a path below the base namespace
// into the specific namespace ("" for the core namespace)
func (v *Validator) ResolveNamespace(ns string) (string, error) {
	ns = strings.TrimRight(ns, "/")
	full := ns
	if !strings.HasPrefix(ns, "http://") && !strings.HasPrefix(ns, "https://") {
		full = v.base
		if p := strings.Trim(ns, "/"); p != "" {
			full += "/" + p
		}
	}
	if err := checkNamespace(full); err != nil {
		return "", err
	}
	if !InNamespace(full, v.base) {
		return "", fmt.Errorf("namespace %q is not within the base namespace %q", full, v.base)
	}
	return entity.Identity{Namespace: full}.SpecificNamespace(v.base), nil
}

// NamespaceURL is the inverse of ResolveNamespace
func (v *Validator) NamespaceURL(specific string) string {
	if specific == "" {
		return v.base
	}
	return v.base + "/" + specific
}

// resolveIdentity reconciles the identity aliases with the decomposed components
func (v *Validator) resolveIdentity(raw map[string]any) (entity.Identity, []*FieldError) {
	var errs []*FieldError

	str := func(key string) (string, bool) {
		val, ok := raw[key]
		if !ok || val == nil {
			return "", false
		}
		s, isString := val.(string)
		if !isString {
			errs = append(errs, newFieldError(KindMalformedIdentity, key, "must be a string, got %s", typeName(val)))
			return "", false
		}
		return s, true
	}

	uri, hasURI := str("uri")
	ident, hasIdent := str("identity")

	components := map[string]string{}
	var missing []string
	for _, key := range []string{"namespace", "version", "name"} {
		if s, ok := str(key); ok {
			components[key] = s
		} else {
			missing = append(missing, key)
		}
	}
	if len(errs) > 0 {
		return entity.Identity{}, errs
	}

	if hasURI && hasIdent && uri != ident {
		errs = append(errs, newFieldError(KindInconsistentComponents, "identity",
			"'uri' (%s) and 'identity' (%s) differ", uri, ident))
	}

	var id entity.Identity
	switch {
	case hasURI || hasIdent:
		field, s := "uri", uri
		if !hasURI {
			field, s = "identity", ident
		}
		parsed, fe := parseIdentity(field, s)
		if fe != nil {
			return entity.Identity{}, append(errs, fe)
		}
		id = parsed
		errs = append(errs, checkComponents(field, s, id, components)...)

	case len(components) == 0:
		return entity.Identity{}, append(errs, newFieldError(KindMissingIdentity, "",
			"either 'uri' (or 'identity') or all of 'namespace', 'version' and 'name' must be given"))

	case len(missing) > 0:
		return entity.Identity{}, append(errs, newFieldError(KindIncompleteComponents, missing[0],
			"'namespace', 'version' and 'name' must be given together, missing: %s", strings.Join(missing, ", ")))

	default:
		id = entity.Identity{Namespace: components["namespace"], Version: components["version"], Name: components["name"]}
		parsed, fe := parseIdentity("namespace", id.String())
		if fe != nil {
			return entity.Identity{}, append(errs, fe)
		}
		if parsed != id {
			return entity.Identity{}, append(errs, newFieldError(KindMalformedIdentity, "namespace",
				"components do not form a valid identity: %q", id.String()))
		}
	}

	if !InNamespace(id.Namespace, v.base) {
		errs = append(errs, newFieldError(KindNamespaceMismatch, "namespace",
			"namespace %q is not within the base namespace %q", id.Namespace, v.base))
	}
	return id, errs
}

func checkComponents(field, s string, id entity.Identity, components map[string]string) []*FieldError {
	if len(components) == 3 {
		recomposed := entity.Identity{
			Namespace: components["namespace"],
			Version:   components["version"],
			Name:      components["name"],
		}.String()
		if recomposed != s {
			return []*FieldError{newFieldError(KindInconsistentComponents, field,
				"%q does not match namespace/version/name %q", s, recomposed)}
		}
		return nil
	}

	parsed := map[string]string{"namespace": id.Namespace, "version": id.Version, "name": id.Name}
	var errs []*FieldError
	for _, key := range []string{"namespace", "version", "name"} {
		if given, ok := components[key]; ok && given != parsed[key] {
			errs = append(errs, newFieldError(KindInconsistentComponents, key,
				"%q does not match the %s %q of %s", given, key, parsed[key], s))
		}
	}
	return errs
}

// ClaimedURI returns the identity a raw entity claims, without validating it.
// It is meant for labelling errors and is "" when nothing usable is present.
func ClaimedURI(raw map[string]any) string {
	for _, key := range []string{"uri", "identity"} {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	ns, _ := raw["namespace"].(string)
	version, _ := raw["version"].(string)
	name, _ := raw["name"].(string)
	if ns != "" && version != "" && name != "" {
		return entity.Identity{Namespace: ns, Version: version, Name: name}.String()
	}
	return ""
}
