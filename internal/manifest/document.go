package manifest

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Element is a parsed XML element with namespace-resolved names.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Element
}

// Parse reads a whole XML document and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	d := xml.NewDecoder(r)
	var root *Element
	var stack []*Element
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attr: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, errors.New("no element found")
	}
	return root, nil
}

// Attribute returns the value of the attribute named local in namespace
// space.
func (e *Element) Attribute(space, local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// HasChild reports whether e has an immediate, un-namespaced child element
// named local.
func (e *Element) HasChild(local string) bool {
	for _, c := range e.Children {
		if c.Name.Space == "" && c.Name.Local == local {
			return true
		}
	}
	return false
}

// Descendants returns every element below e named local, in document order.
// e itself is never included.
func (e *Element) Descendants(local string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, c := range n.Children {
			if c.Name.Space == "" && c.Name.Local == local {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}
