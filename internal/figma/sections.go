package figma

import (
	"errors"
	"fmt"
)

var (
	ErrPageNotFound  = errors.New("figma: page not found")
	ErrFrameNotFound = errors.New("figma: main frame not found")
	ErrNoSections    = errors.New("figma: no named sections in main frame")
)

// FindSections locates page pageName, its FRAME child frameName and returns
// the frame's named FRAME/COMPONENT/INSTANCE children in document order.
func FindSections(doc *Node, pageName, frameName string) ([]Section, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: %q (empty document)", ErrPageNotFound, pageName)
	}
	var page *Node
	for _, p := range doc.Children {
		if p != nil && p.Name == pageName {
			page = p
			break
		}
	}
	if page == nil {
		return nil, fmt.Errorf("%w: %q", ErrPageNotFound, pageName)
	}

	var frame *Node
	for _, f := range page.Children {
		if f != nil && f.Type == TypeFrame && f.Name == frameName {
			frame = f
			break
		}
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: %q on page %q", ErrFrameNotFound, frameName, pageName)
	}

	var out []Section
	for _, n := range frame.Children {
		if n == nil || n.Name == "" {
			continue
		}
		switch n.Type {
		case TypeFrame, TypeComponent, TypeInstance:
			out = append(out, Section{Name: n.Name, Node: n})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSections, frameName)
	}
	return out, nil
}
