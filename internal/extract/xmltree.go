package extract

// xmltree.go builds a minimal element tree for namespace-agnostic lookups.
//
// CTe documents arrive with arbitrary namespace prefixes (and sometimes no
// namespace at all), so every lookup matches on the element's local name
// only. The tree keeps children in document order; searches are pre-order,
// which matches the "first element in the document" semantics callers rely on.

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

type xmlNode struct {
	local    string
	text     string
	children []*xmlNode
}

// parseTree decodes raw XML into an element tree rooted at a synthetic node.
// Returns an error for malformed markup; callers degrade rather than fail.
func parseTree(raw []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	root := &xmlNode{}
	stack := []*xmlNode{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{local: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			cur := stack[len(stack)-1]
			cur.text += string(t)
		}
	}

	return root, nil
}

// find returns the first descendant with the given local name, in document
// order, or nil.
func (n *xmlNode) find(local string) *xmlNode {
	for _, c := range n.children {
		if c.local == local {
			return c
		}
		if found := c.find(local); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant with the given local name, in document order.
func (n *xmlNode) findAll(local string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.children {
		if c.local == local {
			out = append(out, c)
		}
		out = append(out, c.findAll(local)...)
	}
	return out
}

// content returns the concatenated character data of the node and its
// descendants, like DOM textContent.
func (n *xmlNode) content() string {
	if len(n.children) == 0 {
		return n.text
	}
	var b strings.Builder
	b.WriteString(n.text)
	for _, c := range n.children {
		b.WriteString(c.content())
	}
	return b.String()
}

// findText returns the trimmed text of the first matching descendant, or "".
func (n *xmlNode) findText(local string) string {
	if found := n.find(local); found != nil {
		return strings.TrimSpace(found.content())
	}
	return ""
}
