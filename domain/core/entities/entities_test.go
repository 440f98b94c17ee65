package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mindgraph/domain/core/valueobjects"
)

func TestNodePatchApply(t *testing.T) {
	n := Node{ID: "a", Content: "x", Position: valueobjects.Position{X: 1, Y: 2}}

	content := "y"
	width := 200.0
	got := NodePatch{Content: &content, Width: &width}.Apply(n)

	assert.Equal(t, "y", got.Content)
	assert.Equal(t, 200.0, got.Width)
	assert.Equal(t, n.Position, got.Position)
	assert.Equal(t, "x", n.Content, "original must not change")
	assert.True(t, NodePatch{}.IsEmpty())
}

func TestNodeSizeDefaults(t *testing.T) {
	w, h := Node{}.Size(180, 60)
	assert.Equal(t, 180.0, w)
	assert.Equal(t, 60.0, h)

	w, h = Node{Width: 90, Height: 30}.Size(180, 60)
	assert.Equal(t, 90.0, w)
	assert.Equal(t, 30.0, h)
}

func TestEdgePatchApply(t *testing.T) {
	e := Edge{ID: "e", Source: "a", Target: "b"}
	label := "because"
	h := valueobjects.HandleBottom

	got := EdgePatch{Label: &label, SourceHandle: &h}.Apply(e)
	assert.Equal(t, "because", got.Label)
	assert.Equal(t, valueobjects.HandleBottom, got.SourceHandle)
	assert.Equal(t, valueobjects.NodeID("a"), got.Source)
	assert.True(t, got.Touches("b"))
	assert.False(t, got.Touches("c"))
}

func TestTextContentRoundTrip(t *testing.T) {
	c := TextContent("hello")
	assert.Contains(t, c, `"type":"doc"`)
	assert.Equal(t, "hello", PlainText(c))
	assert.Equal(t, "plain", PlainText("plain"))
}
