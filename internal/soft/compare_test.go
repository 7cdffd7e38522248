package soft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

func sampleEntity() *entity.Entity {
	return &entity.Entity{
		Identity:   entity.Identity{Namespace: "http://x/meta", Version: "0.1", Name: "Foo"},
		Meta:       DefaultMetaschema,
		Dimensions: map[string]string{"N": "rows"},
		Properties: map[string]entity.Property{
			"a": {Type: "string", Description: "first"},
			"b": {Type: "float", Shape: []string{"N"}, Unit: "m"},
		},
	}
}

func TestCompareEqual(t *testing.T) {
	a, b := sampleEntity(), sampleEntity()
	assert.True(t, Equal(a, b))
	assert.Empty(t, Compare(a, b))
}

func TestCompareSingleDescription(t *testing.T) {
	a, b := sampleEntity(), sampleEntity()
	prop := b.Properties["a"]
	prop.Description = "changed"
	b.Properties["a"] = prop

	d := Compare(a, b)
	assert.False(t, d.Equal())
	require.Len(t, d, 1)
	assert.Equal(t, Change{Kind: Changed, Path: "properties.a.description", Old: `"first"`, New: `"changed"`}, d[0])
	assert.Equal(t, `~ properties.a.description: "first" -> "changed"`, d.String())
}

func TestCompareAddedRemovedChanged(t *testing.T) {
	a, b := sampleEntity(), sampleEntity()
	b.Description = "now described"
	delete(b.Dimensions, "N")
	b.Dimensions["M"] = "cols"
	delete(b.Properties, "a")
	b.Properties["c"] = entity.Property{Type: "int"}
	prop := b.Properties["b"]
	prop.Shape = []string{"M"}
	prop.Unit = ""
	b.Properties["b"] = prop

	d := Compare(a, b)
	assert.Equal(t, []string{
		"description",
		"dimensions.M",
		"dimensions.N",
		"properties.a",
		"properties.b.shape",
		"properties.b.unit",
		"properties.c",
	}, d.Paths())
	assert.Equal(t, Added, d[1].Kind)
	assert.Equal(t, Removed, d[2].Kind)
	assert.Equal(t, Removed, d[3].Kind)
	assert.Equal(t, `["N"] -> ["M"]`, d[4].Old+" -> "+d[4].New)
	assert.Equal(t, Added, d[6].Kind)
}

func TestCompareShapeEntries(t *testing.T) {
	tests := []struct {
		name          string
		before, after []string
		wantOld       string
		wantNew       string
	}{
		{name: "comma inside an entry", before: []string{"a, b"}, after: []string{"a", "b"}, wantOld: `["a, b"]`, wantNew: `["a", "b"]`},
		{name: "order", before: []string{"a", "b"}, after: []string{"b", "a"}, wantOld: `["a", "b"]`, wantNew: `["b", "a"]`},
		{name: "dropped", before: []string{"a"}, after: nil, wantOld: `["a"]`, wantNew: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := sampleEntity(), sampleEntity()
			a.Properties["p"] = entity.Property{Type: "int", Shape: tt.before}
			b.Properties["p"] = entity.Property{Type: "int", Shape: tt.after}

			assert.False(t, Equal(a, b))
			d := Compare(a, b)
			require.Len(t, d, 1)
			assert.Equal(t, Change{Kind: Changed, Path: "properties.p.shape", Old: tt.wantOld, New: tt.wantNew}, d[0])
		})
	}

	a, b := sampleEntity(), sampleEntity()
	a.Properties["p"] = entity.Property{Type: "int", Shape: []string{}}
	b.Properties["p"] = entity.Property{Type: "int"}
	assert.True(t, Equal(a, b))
}

func TestCompareEmptyDescriptionEqualsAbsent(t *testing.T) {
	v := newTestValidator(t)
	withEmpty, _, err := v.ValidateAny(map[string]any{
		"uri":         "http://x/meta/0.1/Foo",
		"description": "",
		"properties":  map[string]any{"a": map[string]any{"type": "string", "description": nil}},
	})
	require.NoError(t, err)
	without, _, err := v.ValidateAny(map[string]any{
		"uri":        "http://x/meta/0.1/Foo",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
	})
	require.NoError(t, err)

	assert.True(t, Equal(withEmpty, without))
}

func TestCompareAcrossFlavors(t *testing.T) {
	v := newTestValidator(t)
	legacy, err := v.Validate(map[string]any{
		"uri":        "http://x/meta/0.1/Foo",
		"dimensions": []any{map[string]any{"name": "N", "description": "rows"}},
		"properties": []any{
			map[string]any{"name": "b", "type": "float", "shape": []any{"N"}},
			map[string]any{"name": "a", "type": "string"},
		},
	}, Legacy)
	require.NoError(t, err)
	modern, err := v.Validate(map[string]any{
		"uri":        "http://x/meta/0.1/Foo",
		"dimensions": map[string]any{"N": "rows"},
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
			"b": map[string]any{"type": "float", "shape": []any{"N"}},
		},
	}, Modern)
	require.NoError(t, err)

	assert.True(t, Equal(legacy, modern))
}

func TestUnifiedDiff(t *testing.T) {
	a, b := sampleEntity(), sampleEntity()
	prop := b.Properties["a"]
	prop.Description = "changed"
	b.Properties["a"] = prop

	out, err := UnifiedDiff(a, b, "remote", "local")
	require.NoError(t, err)
	assert.Contains(t, out, "--- remote")
	assert.Contains(t, out, "+++ local")
	assert.Contains(t, out, `-      "description": "first",`)
	assert.Contains(t, out, `+      "description": "changed",`)

	same, err := UnifiedDiff(a, a, "remote", "local")
	require.NoError(t, err)
	assert.Empty(t, same)
}
