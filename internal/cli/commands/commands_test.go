package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SINTEF/entities-service/internal/cli/types"
	"github.com/SINTEF/entities-service/internal/soft"
)

const testBase = "http://x/meta"

func testValidator() *soft.Validator {
	return soft.MustNewValidator(soft.Options{BaseNamespace: testBase})
}

func writeEntities(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fooJSON = `{"uri": "http://x/meta/0.1/Foo", "properties": {"a": {"type": "string", "description": "first"}}}`

// fakeService serves documents by path and records uploads
type fakeService struct {
	docs     map[string]types.Document
	getErr   error
	uploaded []types.Document
	createFn func(docs []types.Document) error
}

func (f *fakeService) GetEntity(ctx context.Context, path string) (types.Document, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	doc, ok := f.docs[path]
	return doc, ok, nil
}

func (f *fakeService) CreateEntities(ctx context.Context, docs []types.Document) ([]types.Document, error) {
	if f.createFn != nil {
		if err := f.createFn(docs); err != nil {
			return nil, err
		}
	}
	f.uploaded = append(f.uploaded, docs...)
	return docs, nil
}

// scriptedPrompter answers from fixed values
type scriptedPrompter struct {
	confirm    bool
	input      string
	confirmErr error
	inputErr   error
	asked      []string
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	p.asked = append(p.asked, message)
	return p.confirm, p.confirmErr
}

func (p *scriptedPrompter) Input(message, def string) (string, error) {
	p.asked = append(p.asked, message)
	if p.inputErr != nil {
		return "", p.inputErr
	}
	if p.input == "" {
		return def, nil
	}
	return p.input, nil
}

func (p *scriptedPrompter) Password(message string) (string, error) {
	return "", errors.New("no password in tests")
}

func usePrompter(t *testing.T, p prompter) {
	t.Helper()
	old := prompt
	prompt = p
	t.Cleanup(func() { prompt = old })
}

func TestValidateSourcesLocal(t *testing.T) {
	dir := t.TempDir()
	writeEntities(t, dir, "foo.json", fooJSON)
	writeEntities(t, dir, "list.json", `[
		{"namespace": "http://x/meta/team", "version": "1.0", "name": "Bar",
		 "properties": [{"name": "v", "type": "float"}]},
		{"uri": "http://x/meta/0.1/Bad", "properties": []}
	]`)
	writeEntities(t, dir, "ignored.yaml", `uri: http://x/meta/0.1/Yaml`)

	report, err := validateSources(context.Background(), testValidator(), nil, []string{dir}, validateOptions{quiet: true})
	require.NoError(t, err)

	assert.True(t, report.failed())
	assert.Equal(t, []string{filepath.Join(dir, "list.json")}, report.failedFiles)
	require.Len(t, report.entities, 2)
	for _, c := range report.entities {
		assert.Nil(t, c.exists)
		assert.Nil(t, c.equal)
	}
}

func TestValidateSourcesFailFast(t *testing.T) {
	dir := t.TempDir()
	bad := writeEntities(t, dir, "a.json", `{"uri": "http://x/meta/0.1/Bad"}`)
	writeEntities(t, dir, "b.json", fooJSON)

	report, err := validateSources(context.Background(), testValidator(), nil, []string{dir}, validateOptions{quiet: true, failFast: true})
	assert.ErrorIs(t, err, errValidationFailed)
	assert.Empty(t, report.entities)
	assert.NotContains(t, report.failedFiles, bad)
}

func TestValidateSourcesDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeEntities(t, dir, "a.json", fooJSON)
	writeEntities(t, dir, "b.json", fooJSON)

	report, err := validateSources(context.Background(), testValidator(), nil, []string{dir}, validateOptions{quiet: true})
	require.NoError(t, err)
	assert.Equal(t, []string{testBase + "/0.1/Foo"}, report.failedEntities)
	assert.Equal(t, []string{filepath.Join(dir, "b.json")}, report.failedFiles)
	assert.Len(t, report.entities, 1)
}

func TestValidateSourcesNoFiles(t *testing.T) {
	dir := t.TempDir()
	writeEntities(t, dir, "a.yaml", `{}`)

	_, err := validateSources(context.Background(), testValidator(), nil, []string{dir}, validateOptions{quiet: true})
	assert.ErrorContains(t, err, "no files found")
}

func TestValidateSourcesRemoteComparison(t *testing.T) {
	dir := t.TempDir()
	writeEntities(t, dir, "foo.json", fooJSON)
	writeEntities(t, dir, "bar.json", `{"uri": "http://x/meta/team/0.1/Bar", "properties": {"a": {"type": "int"}}}`)
	writeEntities(t, dir, "baz.json", `{"uri": "http://x/meta/0.1/Baz", "properties": {"a": {"type": "int"}}}`)

	remote := &fakeService{docs: map[string]types.Document{
		"0.1/Foo": {
			"uri":        testBase + "/0.1/Foo",
			"meta":       soft.DefaultMetaschema,
			"dimensions": map[string]any{},
			"properties": map[string]any{"a": map[string]any{"type": "string", "description": "first"}},
		},
		"team/0.1/Bar": {
			"uri":        testBase + "/team/0.1/Bar",
			"properties": map[string]any{"a": map[string]any{"type": "float"}},
		},
	}}

	report, err := validateSources(context.Background(), testValidator(), remote, []string{dir}, validateOptions{quiet: true})
	require.NoError(t, err)
	assert.False(t, report.failed())

	byName := map[string]*checkedEntity{}
	for _, c := range report.entities {
		byName[c.entity.Identity.Name] = c
	}

	assert.True(t, *byName["Foo"].exists)
	assert.True(t, *byName["Foo"].equal)
	assert.Empty(t, byName["Foo"].diff)
	assert.Empty(t, byName["Foo"].changes)

	assert.True(t, *byName["Bar"].exists)
	assert.False(t, *byName["Bar"].equal)
	assert.Contains(t, byName["Bar"].diff, `-      "type": "float"`)
	assert.Contains(t, byName["Bar"].diff, `+      "type": "int"`)
	assert.Equal(t, `~ properties.a.type: "float" -> "int"`, byName["Bar"].changes)

	assert.False(t, *byName["Baz"].exists)
	assert.Nil(t, byName["Baz"].equal)

	strict, err := validateSources(context.Background(), testValidator(), remote, []string{dir}, validateOptions{quiet: true, strict: true})
	require.NoError(t, err)
	assert.Equal(t, []string{testBase + "/team/0.1/Bar"}, strict.failedEntities)

	remote.getErr = errors.New("connection refused")
	_, err = validateSources(context.Background(), testValidator(), remote, []string{dir}, validateOptions{quiet: true})
	assert.ErrorContains(t, err, "could not check if entity already exists")
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOutput, oldNoColor := color.Output, color.NoColor
	color.Output, color.NoColor = &buf, true
	t.Cleanup(func() { color.Output, color.NoColor = oldOutput, oldNoColor })
	return &buf
}

func TestStrictReportsChangedFields(t *testing.T) {
	dir := t.TempDir()
	writeEntities(t, dir, "foo.json", fooJSON)

	remote := &fakeService{docs: map[string]types.Document{
		"0.1/Foo": {
			"uri": testBase + "/0.1/Foo",
			"properties": map[string]any{
				"a": map[string]any{"type": "string", "description": "old"},
				"z": map[string]any{"type": "int"},
			},
		},
	}}
	out := captureOutput(t)

	report, err := validateSources(context.Background(), testValidator(), remote, []string{dir}, validateOptions{strict: true})
	require.NoError(t, err)
	assert.Equal(t, []string{testBase + "/0.1/Foo"}, report.failedEntities)

	require.Len(t, report.entities, 1)
	assert.Equal(t, "~ properties.a.description: \"old\" -> \"first\"\n- properties.z: {type=\"int\"}", report.entities[0].changes)

	assert.Contains(t, out.String(), "Entity differs from the one served remotely: "+testBase+"/0.1/Foo")
	assert.Contains(t, out.String(), `  ~ properties.a.description: "old" -> "first"`)
	assert.Contains(t, out.String(), `  - properties.z: {type="int"}`)
}

func TestServedInvalidEntityIsReported(t *testing.T) {
	dir := t.TempDir()
	writeEntities(t, dir, "foo.json", fooJSON)
	remote := &fakeService{docs: map[string]types.Document{
		"0.1/Foo": {"uri": testBase + "/0.1/Foo", "properties": map[string]any{}},
	}}

	report, err := validateSources(context.Background(), testValidator(), remote, []string{dir}, validateOptions{quiet: true})
	require.NoError(t, err)
	require.Len(t, report.entities, 1)
	assert.False(t, *report.entities[0].equal)
	assert.Contains(t, report.entities[0].changes, "the served entity is not valid")
	assert.Empty(t, report.entities[0].diff)
}

func TestValidationRows(t *testing.T) {
	v := testValidator()
	mk := func(uri string) *checkedEntity {
		e, _, err := v.ValidateAny(map[string]any{"uri": uri, "properties": map[string]any{"a": map[string]any{"type": "int"}}})
		require.NoError(t, err)
		return &checkedEntity{entity: e}
	}

	rows := validationRows([]*checkedEntity{mk(testBase + "/team/0.1/A"), mk(testBase + "/0.2/B"), mk(testBase + "/0.1/B")}, true)
	require.Len(t, rows, 3)
	assert.Equal(t, "0.1", rows[0].Version)
	assert.Equal(t, "0.2", rows[1].Version)
	assert.Equal(t, testBase+"/team", rows[2].Namespace)
	assert.Equal(t, "Unknown", rows[0].Exists)
	assert.Equal(t, "Unknown", rows[0].Equal)
}

func TestRemotePath(t *testing.T) {
	v := testValidator()
	e, _, err := v.ValidateAny(map[string]any{"uri": testBase + "/a/b/1.0/Foo", "properties": map[string]any{"a": map[string]any{"type": "int"}}})
	require.NoError(t, err)
	assert.Equal(t, "a/b/1.0/Foo", remotePath(e, testBase))

	e, _, err = v.ValidateAny(map[string]any{"uri": testBase + "/1.0/Foo", "properties": map[string]any{"a": map[string]any{"type": "int"}}})
	require.NoError(t, err)
	assert.Equal(t, "1.0/Foo", remotePath(e, testBase))
}
