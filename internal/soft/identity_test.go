package soft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    entity.Identity
		wantErr string
	}{
		{
			name:  "core namespace",
			input: "http://onto-ns.com/meta/0.1/Person",
			want:  entity.Identity{Namespace: "http://onto-ns.com/meta", Version: "0.1", Name: "Person"},
		},
		{
			name:  "specific namespace",
			input: "https://onto-ns.com/meta/team/sub/1.0.2/Cell_Model-2",
			want:  entity.Identity{Namespace: "https://onto-ns.com/meta/team/sub", Version: "1.0.2", Name: "Cell_Model-2"},
		},
		{
			name:  "opaque version",
			input: "http://x/meta/v2-beta/Foo",
			want:  entity.Identity{Namespace: "http://x/meta", Version: "v2-beta", Name: "Foo"},
		},
		{name: "too few segments", input: "Foo", wantErr: "expected {namespace}/{version}/{name}"},
		{name: "empty name", input: "http://x/meta/0.1/", wantErr: "must all be non-empty"},
		{name: "empty version", input: "http://x/meta//Foo", wantErr: "must all be non-empty"},
		{name: "illegal name character", input: "http://x/meta/0.1/Fo.o", wantErr: "may only contain"},
		{name: "dollar in namespace", input: "http://x/me$ta/0.1/Foo", wantErr: "must not contain '$'"},
		{name: "space in namespace", input: "http://x/me ta/0.1/Foo", wantErr: "not allowed in a URL path"},
		{name: "not a URL", input: "meta/0.1/Foo", wantErr: "absolute http(s) URL"},
		{name: "no host", input: "http:///0.1/Foo", wantErr: "absolute http(s) URL"},
		{name: "empty path segment", input: "http://x/a//b/0.1/Foo", wantErr: "empty path segment"},
		{name: "query in version", input: "http://x/meta/0.1?x/Foo", wantErr: "illegal characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentity(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, hasKindOf(err, KindMalformedIdentity))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	triples := []entity.Identity{
		{Namespace: "http://onto-ns.com/meta", Version: "0.1", Name: "A"},
		{Namespace: "http://onto-ns.com/meta/x/y", Version: "1.2.3", Name: "b_c-d"},
		{Namespace: "https://example.org:8080/meta", Version: "2", Name: "Z9"},
	}
	for _, id := range triples {
		parsed, err := ParseIdentity(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestSpecificNamespace(t *testing.T) {
	id := entity.Identity{Namespace: "http://onto-ns.com/meta/team/sub", Version: "0.1", Name: "A"}
	assert.Equal(t, "team/sub", id.SpecificNamespace("http://onto-ns.com/meta/"))

	core := entity.Identity{Namespace: "http://onto-ns.com/meta", Version: "0.1", Name: "A"}
	assert.Equal(t, "", core.SpecificNamespace("http://onto-ns.com/meta"))
}

func TestInNamespace(t *testing.T) {
	assert.True(t, InNamespace("http://x/meta", "http://x/meta"))
	assert.True(t, InNamespace("http://x/meta/sub", "http://x/meta/"))
	assert.False(t, InNamespace("http://x/metadata", "http://x/meta"))
	assert.False(t, InNamespace("http://x/other", "http://x/meta"))
}

func TestResolveNamespace(t *testing.T) {
	v := MustNewValidator(Options{BaseNamespace: "http://x/meta"})

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://x/meta", want: ""},
		{in: "http://x/meta/", want: ""},
		{in: "http://x/meta/team/sub", want: "team/sub"},
		{in: "team/sub", want: "team/sub"},
		{in: "/team/", want: "team"},
		{in: "", want: ""},
		{in: "http://x/other", wantErr: true},
		{in: "http://x/metadata", wantErr: true},
		{in: "team//sub", wantErr: true},
		{in: "te am", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := v.ResolveNamespace(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, InNamespace(v.NamespaceURL(got), v.BaseNamespace()))
		})
	}
}

func TestResolveIdentity(t *testing.T) {
	v := MustNewValidator(Options{BaseNamespace: "http://x/meta"})

	tests := []struct {
		name     string
		raw      map[string]any
		want     string
		wantKind []Kind
	}{
		{
			name: "uri only",
			raw:  map[string]any{"uri": "http://x/meta/0.1/Foo"},
			want: "http://x/meta/0.1/Foo",
		},
		{
			name: "identity alias",
			raw:  map[string]any{"identity": "http://x/meta/0.1/Foo"},
			want: "http://x/meta/0.1/Foo",
		},
		{
			name: "components only",
			raw:  map[string]any{"namespace": "http://x/meta/sub", "version": "0.1", "name": "Foo"},
			want: "http://x/meta/sub/0.1/Foo",
		},
		{
			name: "components agree with uri",
			raw:  map[string]any{"uri": "http://x/meta/0.1/Foo", "namespace": "http://x/meta", "version": "0.1", "name": "Foo"},
			want: "http://x/meta/0.1/Foo",
		},
		{
			name: "partial components agree with uri",
			raw:  map[string]any{"uri": "http://x/meta/0.1/Foo", "name": "Foo"},
			want: "http://x/meta/0.1/Foo",
		},
		{
			name:     "components disagree with uri",
			raw:      map[string]any{"uri": "http://x/other/0.1/Foo", "namespace": "http://x/meta", "version": "0.1", "name": "Foo"},
			wantKind: []Kind{KindInconsistentComponents, KindNamespaceMismatch},
		},
		{
			name:     "partial component disagrees with uri",
			raw:      map[string]any{"uri": "http://x/meta/0.1/Foo", "version": "0.2"},
			wantKind: []Kind{KindInconsistentComponents},
		},
		{
			name:     "uri and identity differ",
			raw:      map[string]any{"uri": "http://x/meta/0.1/Foo", "identity": "http://x/meta/0.2/Foo"},
			wantKind: []Kind{KindInconsistentComponents},
		},
		{
			name:     "nothing given",
			raw:      map[string]any{},
			wantKind: []Kind{KindMissingIdentity},
		},
		{
			name:     "two components",
			raw:      map[string]any{"namespace": "http://x/meta", "version": "0.1"},
			wantKind: []Kind{KindIncompleteComponents},
		},
		{
			name:     "one component",
			raw:      map[string]any{"name": "Foo"},
			wantKind: []Kind{KindIncompleteComponents},
		},
		{
			name:     "outside base namespace",
			raw:      map[string]any{"uri": "http://y/meta/0.1/Foo"},
			wantKind: []Kind{KindNamespaceMismatch},
		},
		{
			name:     "non-string uri",
			raw:      map[string]any{"uri": 3.0},
			wantKind: []Kind{KindMalformedIdentity},
		},
		{
			name:     "name with slash in components",
			raw:      map[string]any{"namespace": "http://x/meta", "version": "0.1", "name": "a/b"},
			wantKind: []Kind{KindMalformedIdentity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, errs := v.resolveIdentity(tt.raw)
			if len(tt.wantKind) == 0 {
				require.Empty(t, errs)
				assert.Equal(t, tt.want, id.String())
				return
			}
			kinds := make([]Kind, 0, len(errs))
			for _, fe := range errs {
				kinds = append(kinds, fe.Kind)
			}
			assert.ElementsMatch(t, tt.wantKind, kinds)
		})
	}
}

// hasKindOf matches a bare *FieldError as well as aggregated errors
func hasKindOf(err error, kind Kind) bool {
	if fe, ok := err.(*FieldError); ok {
		return fe.Kind == kind
	}
	return HasKind(err, kind)
}

func TestClaimedURI(t *testing.T) {
	assert.Equal(t, "http://x/meta/0.1/Foo", ClaimedURI(map[string]any{"uri": "http://x/meta/0.1/Foo"}))
	assert.Equal(t, "http://x/meta/0.1/Foo", ClaimedURI(map[string]any{"identity": "http://x/meta/0.1/Foo"}))
	assert.Equal(t, "http://x/meta/0.1/Foo", ClaimedURI(map[string]any{"namespace": "http://x/meta", "version": "0.1", "name": "Foo"}))
	assert.Equal(t, "", ClaimedURI(map[string]any{"name": "Foo"}))
	assert.Equal(t, "", ClaimedURI(map[string]any{"uri": 42}))
}
