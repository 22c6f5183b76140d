// Package figma reads a Figma file, locates the page sections of the main
// frame and summarizes their layer trees for prompting.
package figma

// Node types that matter to the pipeline. Figma defines more; they pass
// through as plain strings.
const (
	TypeFrame     = "FRAME"
	TypeComponent = "COMPONENT"
	TypeInstance  = "INSTANCE"
	TypeText      = "TEXT"
	TypeVector    = "VECTOR"
	TypeGroup     = "GROUP"
	TypeRectangle = "RECTANGLE"

	FillImage = "IMAGE"
)

// Node is one layer of the Figma document tree as returned by the files API.
type Node struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Visible    *bool   `json:"visible,omitempty"`
	Characters string  `json:"characters,omitempty"`
	Fills      []Paint `json:"fills,omitempty"`
	Children   []*Node `json:"children,omitempty"`
}

// Paint is the subset of a Figma paint needed to spot image placeholders.
type Paint struct {
	Type string `json:"type"`
}

// IsVisible treats an absent visible flag as visible.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// HasImageFill reports whether any fill is an image.
func (n *Node) HasImageFill() bool {
	for _, f := range n.Fills {
		if f.Type == FillImage {
			return true
		}
	}
	return false
}

// File is the top-level payload of GET /v1/files/{key}.
type File struct {
	Name     string `json:"name"`
	Document *Node  `json:"document"`
}

// Section is a named top-level block of the main frame.
type Section struct {
	Name string
	Node *Node
}
