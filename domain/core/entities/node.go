package entities

import (
	"encoding/json"

	"mindgraph/domain/core/valueobjects"
)

// Node is a single idea on the canvas. Content is an opaque rich-text
// document owned by the editor; the engine never interprets it.
type Node struct {
	ID       valueobjects.NodeID   `json:"id"`
	Content  string                `json:"content"`
	Position valueobjects.Position `json:"position"`
	// Width and Height are the rendered size; zero means not measured yet.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// NodeDraft carries the caller-supplied fields of a node that is about to be
// created. The id is always assigned by the store.
type NodeDraft struct {
	Content  string
	Position valueobjects.Position
	Width    float64
	Height   float64
}

// NodePatch is a partial update of a node. Nil fields are left untouched.
type NodePatch struct {
	Content  *string
	Position *valueobjects.Position
	Width    *float64
	Height   *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p NodePatch) IsEmpty() bool {
	return p.Content == nil && p.Position == nil && p.Width == nil && p.Height == nil
}

// Apply returns a copy of n with the patch applied.
func (p NodePatch) Apply(n Node) Node {
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Width != nil {
		n.Width = *p.Width
	}
	if p.Height != nil {
		n.Height = *p.Height
	}
	return n
}

// Size returns the node's dimensions, falling back to the given defaults for
// unmeasured sides.
func (n Node) Size(defaultWidth, defaultHeight float64) (float64, float64) {
	w, h := n.Width, n.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

type textDoc struct {
	Type    string     `json:"type"`
	Text    string     `json:"text,omitempty"`
	Content []textDoc `json:"content,omitempty"`
}

// TextContent wraps plain text in the rich-text document format used for node
// content: a doc holding one paragraph with one text run.
func TextContent(text string) string {
	doc := textDoc{
		Type: "doc",
		Content: []textDoc{{
			Type:    "paragraph",
			Content: []textDoc{{Type: "text", Text: text}},
		}},
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

// PlainText extracts the concatenated text runs from rich-text content. Content
// that is not a document is returned unchanged.
func PlainText(content string) string {
	var doc textDoc
	if err := json.Unmarshal([]byte(content), &doc); err != nil || doc.Type == "" {
		return content
	}
	var out []byte
	var walk func(d textDoc)
	walk = func(d textDoc) {
		if d.Type == "text" {
			out = append(out, d.Text...)
		}
		for _, c := range d.Content {
			walk(c)
		}
	}
	walk(doc)
	return string(out)
}
