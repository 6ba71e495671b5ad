package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// GetAttr returns the attribute value and whether it is present.
func GetAttr(n *html.Node, key string) (string, bool) {
	return lookupAttr(n, key)
}

// SetAttr creates or overwrites an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute. No-op if absent.
func RemoveAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// RenameAttr moves an attribute's value under a new name. No-op if the
// source attribute is absent; an existing attribute under the new name is
// overwritten.
func RenameAttr(n *html.Node, oldKey, newKey string) {
	val, ok := lookupAttr(n, oldKey)
	if !ok || newKey == "" || oldKey == newKey {
		return
	}
	RemoveAttr(n, oldKey)
	SetAttr(n, newKey, val)
}

// AppendClass adds a class token if not already present. Idempotent.
func AppendClass(n *html.Node, class string) {
	if class == "" {
		return
	}
	existing, _ := lookupAttr(n, "class")
	for _, c := range strings.Fields(existing) {
		if c == class {
			return
		}
	}
	if existing == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", existing+" "+class)
}

// ReplaceText replaces the element's direct text content with the given
// value, or appends a text node if the element has none. Nested elements
// are untouched.
func ReplaceText(n *html.Node, text string) {
	var first *html.Node
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode {
			if first == nil {
				first = c
			} else {
				n.RemoveChild(c)
			}
		}
		c = next
	}
	if first != nil {
		first.Data = text
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
