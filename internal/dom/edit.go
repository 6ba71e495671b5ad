package dom

import (
	"math/rand"

	"golang.org/x/net/html"
)

// InsertBefore inserts fragment nodes as preceding siblings of target.
// No-op when target has no parent (e.g. the document root).
func InsertBefore(target *html.Node, fragment []*html.Node) {
	if target.Parent == nil {
		return
	}
	for _, n := range fragment {
		target.Parent.InsertBefore(n, target)
	}
}

// InsertAfter inserts fragment nodes as following siblings of target.
func InsertAfter(target *html.Node, fragment []*html.Node) {
	if target.Parent == nil {
		return
	}
	ref := target.NextSibling
	for _, n := range fragment {
		if ref != nil {
			target.Parent.InsertBefore(n, ref)
		} else {
			target.Parent.AppendChild(n)
		}
	}
}

// PrependChild inserts fragment nodes as the first children of target.
func PrependChild(target *html.Node, fragment []*html.Node) {
	ref := target.FirstChild
	for _, n := range fragment {
		if ref != nil {
			target.InsertBefore(n, ref)
		} else {
			target.AppendChild(n)
		}
	}
}

// AppendChild appends fragment nodes as the last children of target.
func AppendChild(target *html.Node, fragment []*html.Node) {
	for _, n := range fragment {
		target.AppendChild(n)
	}
}

// Wrap moves target inside wrapper and puts wrapper in target's place.
// No-op when wrapper is nil or target has no parent.
func Wrap(target, wrapper *html.Node) {
	if wrapper == nil || target.Parent == nil {
		return
	}
	parent := target.Parent
	parent.InsertBefore(wrapper, target)
	parent.RemoveChild(target)
	wrapper.AppendChild(target)
}

// ReplaceChildren clears target's children and appends the fragment.
func ReplaceChildren(target *html.Node, fragment []*html.Node) {
	for target.FirstChild != nil {
		target.RemoveChild(target.FirstChild)
	}
	AppendChild(target, fragment)
}

// ShuffleChildren reorders the direct element children of target using the
// given generator. Non-element children (text, comments) are dropped.
func ShuffleChildren(target *html.Node, r *rand.Rand) {
	var elements []*html.Node
	for c := target.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			elements = append(elements, c)
		}
	}
	for target.FirstChild != nil {
		target.RemoveChild(target.FirstChild)
	}
	r.Shuffle(len(elements), func(i, j int) {
		elements[i], elements[j] = elements[j], elements[i]
	})
	for _, e := range elements {
		target.AppendChild(e)
	}
}
