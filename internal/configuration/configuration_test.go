package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gometacall/gometacall/internal/apperr"
)

func TestParseJSON(t *testing.T) {
	doc, err := ParseJSON([]byte(`{
		"language_id": "python",
		"path": "root",
		"scripts": ["main.py"],
		"execution_paths": ["/opt/scripts"]
	}`))
	require.NoError(t, err)
	require.Equal(t, "python", doc.LanguageID)
	require.Equal(t, []string{"main.py"}, doc.Scripts)
}

func TestParseYAML(t *testing.T) {
	doc, err := ParseYAML([]byte("language_id: ruby\npath: root\nscripts:\n  - main.rb\n"))
	require.NoError(t, err)
	require.Equal(t, "ruby", doc.LanguageID)
	require.Equal(t, []string{"main.rb"}, doc.Scripts)
}

func TestResolutionOrderIsDependencyFirst(t *testing.T) {
	leaf := &Document{Path: "leaf"}
	mid := &Document{Path: "mid", Dependencies: []*Document{leaf}}
	root := &Document{Path: "root", Dependencies: []*Document{mid}}

	order, err := ResolutionOrder(root)
	require.NoError(t, err)

	paths := make([]string, len(order))
	for i, d := range order {
		paths[i] = d.Path
	}
	require.Equal(t, []string{"leaf", "mid", "root"}, paths)
}

func TestResolutionOrderDetectsCycle(t *testing.T) {
	a := &Document{Path: "a"}
	b := &Document{Path: "b", Dependencies: []*Document{a}}
	a.Dependencies = []*Document{b}

	_, err := ResolutionOrder(a)
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.CyclicConfiguration))
}

func TestResolutionOrderSharedDependencyVisitedOnce(t *testing.T) {
	shared := &Document{Path: "shared"}
	left := &Document{Path: "left", Dependencies: []*Document{shared}}
	right := &Document{Path: "right", Dependencies: []*Document{shared}}
	root := &Document{Path: "root", Dependencies: []*Document{left, right}}

	order, err := ResolutionOrder(root)
	require.NoError(t, err)
	require.Len(t, order, 4)
	require.Equal(t, "shared", order[0].Path)
}
