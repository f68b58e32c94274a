package gutenberg

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// findAll yields every element named tag below n, in document order.
func findAll(n *html.Node, tag string) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		walk(n, tag, yield)
	}
}

func walk(n *html.Node, tag string, yield func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			if !yield(c) {
				return false
			}
		}
		if !walk(c, tag, yield) {
			return false
		}
	}
	return true
}

func findFirst(n *html.Node, tag string) *html.Node {
	for c := range findAll(n, tag) {
		return c
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}
