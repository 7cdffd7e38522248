package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderNamespaceTree(t *testing.T) {
	out := RenderNamespaceTree("http://x/meta/", []string{
		"http://x/meta",
		"http://x/meta/team/b",
		"http://x/meta/team/a",
		"http://x/meta/other",
	})

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "http://x/meta")
	assert.Len(t, lines, 5)
	assert.Less(t, strings.Index(out, "other"), strings.Index(out, "team"))
	assert.Equal(t, 1, strings.Count(out, "team"))
}

func TestRenderEntityTableBlanksRepeats(t *testing.T) {
	out := RenderEntityTable([]EntityRow{
		{Namespace: "http://x/meta", Name: "Foo", Version: "0.1"},
		{Namespace: "http://x/meta", Name: "Foo", Version: "0.2"},
		{Namespace: "http://x/meta/team", Name: "Foo", Version: "0.1"},
	}, false)

	assert.Equal(t, 1, strings.Count(out, "http://x/meta/team"))
	assert.Equal(t, 2, strings.Count(out, "Foo"))
	assert.Contains(t, out, "Namespace")
	assert.NotContains(t, strings.ToLower(out), "exists remotely")

	withRemote := RenderEntityTable([]EntityRow{{Namespace: "n", Name: "N", Version: "1", Exists: "Yes", Equal: "No"}}, true)
	assert.Contains(t, withRemote, "Exists remotely")
	assert.Contains(t, withRemote, "Equal to remote")
	assert.Contains(t, withRemote, "Yes")
}

func TestRenderDiffKeepsLines(t *testing.T) {
	diff := "--- remote\n+++ local\n@@ -1 +1 @@\n-a\n+b\n"
	out := RenderDiff(diff)
	assert.Len(t, strings.Split(out, "\n"), 5)
	assert.Contains(t, out, "-a")
	assert.Contains(t, out, "+b")
}
