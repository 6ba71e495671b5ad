package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScriptNode builds an inline <script> element carrying js as raw text.
// Attributes are applied in pair order. Any "</script" sequence inside the
// payload is escaped so the element cannot be terminated early.
func ScriptNode(js string, attrPairs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
	}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrPairs[i], Val: attrPairs[i+1]})
	}
	js = strings.ReplaceAll(js, "</script", "<\\/script")
	n.AppendChild(&html.Node{Type: html.TextNode, Data: js})
	return n
}
