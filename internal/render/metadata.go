package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Metadata is what autolink reads back from a rendered page.
type Metadata struct {
	Title          string
	Description    string
	HasDescription bool
}

// ReadMetadata parses the rendered page at path.
func ReadMetadata(path string) (Metadata, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Metadata{}, err
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseMetadata(f)
}

// ParseMetadata extracts the text of the first title inside head and the
// content attribute of the first description meta element. A page without a
// title yields an empty Title; a missing meta element or content attribute
// leaves HasDescription false.
func ParseMetadata(r io.Reader) (Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	var md Metadata
	if head := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Head }); head != nil {
		if title := findFirst(head, func(n *html.Node) bool { return n.DataAtom == atom.Title }); title != nil {
			md.Title = extractText(title)
		}
	}

	meta := findFirst(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.Meta {
			return false
		}
		name, _ := getAttr(n, "name")
		return name == "description"
	})
	if meta != nil {
		md.Description, md.HasDescription = getAttr(meta, "content")
	}
	return md, nil
}

// findFirst returns the first element node below n, in document order,
// accepted by match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// extractText concatenates the text below n with whitespace runs collapsed.
func extractText(n *html.Node) string {
	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(text.String()), " ")
}
