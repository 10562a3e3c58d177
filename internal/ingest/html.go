package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// Page is the readable text of an HTML document
type Page struct {
	Title string
	Text  string
	Site  string // Name of the content selector that matched
}

// site picks the main content of pages from one kind of website
type site interface {
	Name() string
	CanHandle(rawURL string) bool
	Root(doc *html.Node) *html.Node
	Skip(n *html.Node) bool
}

var sites = []site{wikipediaSite{}, legalSite{}}

func siteFor(rawURL string) site {
	for _, s := range sites {
		if s.CanHandle(rawURL) {
			return s
		}
	}
	return genericSite{}
}

// HTMLText parses an HTML page and returns its main text, one paragraph
// per block element
func HTMLText(content, rawURL string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	s := siteFor(rawURL)
	page := &Page{Site: s.Name()}
	if t := findFirst(doc, func(n *html.Node) bool { return isElement(n, "title") }); t != nil {
		page.Title = strings.Join(strings.Fields(textOf(t)), " ")
	}

	root := s.Root(doc)
	if root == nil {
		root = doc
	}

	var blocks []string
	var cur strings.Builder
	flush := func() {
		blocks = append(blocks, cur.String())
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipAlways[n.Data] || s.Skip(n) {
				return
			}
			if n.Data == "br" {
				cur.WriteString(" ")
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(root)
	flush()

	page.Text = paragraphs(blocks)
	return page, nil
}

var skipAlways = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "head": true, "iframe": true, "form": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "dt": true, "dd": true, "pre": true, "tr": true, "figcaption": true,
}

// genericSite prefers <article>, then <main>, then <body>
type genericSite struct{}

func (genericSite) Name() string           { return "generic" }
func (genericSite) CanHandle(string) bool  { return true }
func (genericSite) Skip(n *html.Node) bool { return chrome[n.Data] }
func (genericSite) Root(doc *html.Node) *html.Node {
	for _, tag := range []string{"article", "main", "body"} {
		if n := findFirst(doc, func(n *html.Node) bool { return isElement(n, tag) }); n != nil {
			return n
		}
	}
	return doc
}

var chrome = map[string]bool{"nav": true, "header": true, "footer": true, "aside": true}

// wikipediaSite reads the article body without references and navigation
// boxes
type wikipediaSite struct{}

func (wikipediaSite) Name() string { return "wikipedia" }

func (wikipediaSite) CanHandle(rawURL string) bool {
	return strings.Contains(rawURL, "wikipedia.org")
}

func (wikipediaSite) Root(doc *html.Node) *html.Node {
	return findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "div") && (hasClass(n, "mw-parser-output") || attr(n, "id") == "mw-content-text")
	})
}

func (wikipediaSite) Skip(n *html.Node) bool {
	if chrome[n.Data] || n.Data == "table" {
		return true
	}
	for _, class := range []string{"reference", "reflist", "navbox", "infobox", "mw-editsection", "hatnote", "toc", "thumb"} {
		if hasClass(n, class) {
			return true
		}
	}
	return attr(n, "id") == "toc"
}

// legalSite handles statute and regulation portals, whose article text
// sits in a content container next to heavy navigation
type legalSite struct{}

var legalDomains = []string{
	"legislation.gov.uk", "law.cornell.edu", "justice.gov", "thuvienphapluat.vn", "chinhphu.vn",
}

func (legalSite) Name() string { return "legal" }

func (legalSite) CanHandle(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, d := range legalDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return strings.Contains(lower, "/statute") || strings.Contains(lower, "/regulation")
}

func (legalSite) Root(doc *html.Node) *html.Node {
	for _, id := range []string{"content", "viewLegContents", "divContentDoc"} {
		if n := findFirst(doc, func(n *html.Node) bool { return attr(n, "id") == id }); n != nil {
			return n
		}
	}
	return genericSite{}.Root(doc)
}

func (legalSite) Skip(n *html.Node) bool {
	return chrome[n.Data] || hasClass(n, "breadcrumb")
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func hasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == className {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}
