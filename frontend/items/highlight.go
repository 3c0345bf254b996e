package items

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Cell positions read back from rendered rows.
const (
	cellEnhancement = 2
	cellPrice       = 3
	cellPackage     = 5
	minCells        = 7
)

// HighlightCheapestItems marks the cheapest row per group in every table
// that sits inside a structured-table block under root. Rows are read back
// from their cell text, so the pass works on markup produced elsewhere.
// The header row (first child) is skipped. Running it twice adds the class
// twice. It returns the number of rows marked.
func HighlightCheapestItems(root *html.Node) int {
	marked := 0
	for _, table := range structuredTables(root) {
		var rows []*html.Node
		var data []RenderedRow
		for _, tr := range descendants(table, atom.Tr) {
			if isFirstElementChild(tr) {
				continue
			}
			cells := descendants(tr, atom.Td)
			if len(cells) < minCells {
				continue
			}
			rows = append(rows, tr)
			data = append(data, RenderedRow{
				Enhancement: strings.TrimSpace(textContent(cells[cellEnhancement])),
				Price:       strings.TrimSpace(textContent(cells[cellPrice])),
				Package:     strings.TrimSpace(textContent(cells[cellPackage])),
			})
		}
		for i, cheapest := range CheapestForRendered(data) {
			if !cheapest {
				continue
			}
			appendClass(rows[i], DetailRowClass(true, data[i].IsPackage()))
			marked++
		}
	}
	return marked
}

// HighlightCheapestItemsHTML parses a full document from src, runs
// HighlightCheapestItems and writes the result to dst.
func HighlightCheapestItemsHTML(src io.Reader, dst io.Writer) error {
	doc, err := html.Parse(src)
	if err != nil {
		return fmt.Errorf("parse rendered page: %w", err)
	}
	HighlightCheapestItems(doc)
	if err := html.Render(dst, doc); err != nil {
		return fmt.Errorf("render highlighted page: %w", err)
	}
	return nil
}

func structuredTables(root *html.Node) []*html.Node {
	var tables []*html.Node
	var walk func(n *html.Node, inside bool)
	walk = func(n *html.Node, inside bool) {
		if n.Type == html.ElementNode {
			if inside && n.DataAtom == atom.Table {
				tables = append(tables, n)
			}
			if hasClass(n, "structured-table") {
				inside = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inside)
		}
	}
	walk(root, false)
	return tables
}

func descendants(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func isFirstElementChild(n *html.Node) bool {
	if n.Parent == nil {
		return false
	}
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c == n
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		if p.Type == html.TextNode {
			b.WriteString(p.Data)
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == class {
					return true
				}
			}
		}
	}
	return false
}

func appendClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		if strings.TrimSpace(a.Val) == "" {
			n.Attr[i].Val = class
		} else {
			n.Attr[i].Val = a.Val + " " + class
		}
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}
