package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// QuerySelectorAll returns all nodes matching a CSS-like selector.
// Supported subset:
//   - tag: "button", "div"
//   - .class / #id, also compounded: "div.content", "a#home.nav"
//   - multiple classes: "div.a.b"
//   - tag[attr] and tag[attr=val]
//   - descendant combinator (space): "main .card a"
//   - selector groups (comma): "button, a, input"
//
// Malformed or unmatchable selectors return no nodes, never an error.
func (d *Document) QuerySelectorAll(selector string) []*html.Node {
	var results []*html.Node
	seen := make(map[*html.Node]bool)
	for _, group := range strings.Split(selector, ",") {
		for _, n := range querySelector(d.root, strings.TrimSpace(group)) {
			if !seen[n] {
				seen[n] = true
				results = append(results, n)
			}
		}
	}
	return results
}

func querySelector(root *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}

	matches := matchSimple(root, parts[0], true)

	// Descendant combinator: filter through subsequent parts.
	for i := 1; i < len(parts); i++ {
		var next []*html.Node
		for _, parent := range matches {
			next = append(next, matchSimple(parent, parts[i], false)...)
		}
		matches = next
	}

	return matches
}

// matchSimple finds all nodes under root matching a single compound
// selector. When inclusive is false, root itself is excluded (descendant
// semantics).
func matchSimple(root *html.Node, sel string, inclusive bool) []*html.Node {
	m, ok := parseSimpleSelector(sel)
	if !ok {
		return nil
	}
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if matchesSelector(n, m) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if inclusive {
		walk(root)
	} else {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return results
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
	attrKey string
	attrVal string
}

// parseSimpleSelector parses "tag.class", "#id", "tag[attr=val]", etc.
// Returns ok=false for selectors it cannot make sense of.
func parseSimpleSelector(sel string) (simpleSelector, bool) {
	var s simpleSelector
	if sel == "" {
		return s, false
	}

	// Attribute selector: tag[attr] or tag[attr=val].
	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		end := strings.IndexByte(sel, ']')
		if end < idx {
			return s, false
		}
		attrPart := sel[idx+1 : end]
		sel = sel[:idx]
		if eqIdx := strings.IndexByte(attrPart, '='); eqIdx >= 0 {
			s.attrKey = attrPart[:eqIdx]
			s.attrVal = strings.Trim(attrPart[eqIdx+1:], `"'`)
		} else {
			s.attrKey = attrPart
		}
		if s.attrKey == "" {
			return s, false
		}
	}

	// #id (at most one).
	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		rest := sel[idx+1:]
		sel = sel[:idx]
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			s.id = rest[:dot]
			sel += "." + rest[dot+1:] // classes after the id
		} else {
			s.id = rest
		}
	}

	// .class (possibly several).
	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		for _, c := range strings.Split(sel[idx+1:], ".") {
			if c != "" {
				s.classes = append(s.classes, c)
			}
		}
		sel = sel[:idx]
	}

	s.tag = strings.ToLower(sel)
	if s.tag == "*" {
		s.tag = ""
	}
	if s.tag == "" && s.id == "" && len(s.classes) == 0 && s.attrKey == "" {
		return s, false
	}
	return s, true
}

func matchesSelector(n *html.Node, s simpleSelector) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && attrValue(n, "id") != s.id {
		return false
	}
	if len(s.classes) > 0 {
		have := strings.Fields(attrValue(n, "class"))
		for _, want := range s.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	if s.attrKey != "" {
		val, present := lookupAttr(n, s.attrKey)
		if !present {
			return false
		}
		if s.attrVal != "" && val != s.attrVal {
			return false
		}
	}
	return true
}

func attrValue(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
