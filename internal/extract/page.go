package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Page is the readable content of an article page
type Page struct {
	Title         string
	Description   string
	SiteName      string
	Text          string
	ExternalLinks int
}

// ParsePage extracts title, description and visible text from an HTML page.
// sourceURL is used to tell external links from same-site ones.
func ParsePage(htmlContent string, sourceURL string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	page := &Page{}
	readHead(doc, page)

	// Prefer <article> when the page has one
	root := doc
	if article := findElement(doc, "article"); article != nil {
		root = article
	}
	page.Text = extractVisibleText(root)

	if base, err := url.Parse(sourceURL); err == nil && base.Host != "" {
		page.ExternalLinks = countExternalLinks(doc, base)
	}

	return page, nil
}

// readHead fills title, description and site name from <title> and meta tags
func readHead(doc *html.Node, page *Page) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if page.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				switch key {
				case "og:title":
					// og:title is usually cleaner than <title>
					if content != "" {
						page.Title = content
					}
				case "og:description", "description":
					if page.Description == "" {
						page.Description = content
					}
				case "og:site_name":
					page.SiteName = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// extractVisibleText extracts text nodes from HTML, skipping scripts, styles
// and page chrome. Block elements become paragraph breaks.
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "form", "svg", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteString("\n\n")
		}
	}

	walk(n)
	return normalizeParagraphs(buf.String())
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "article", "section", "h1", "h2", "h3", "h4", "h5", "h6",
		"li", "blockquote", "br", "tr", "figcaption", "header":
		return true
	}
	return false
}

// normalizeParagraphs trims each paragraph and collapses runs of blank lines
func normalizeParagraphs(text string) string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// countExternalLinks counts distinct http(s) links pointing off the page's host
func countExternalLinks(doc *html.Node, base *url.URL) int {
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if resolved := resolveURL(base, strings.TrimSpace(attr(n, "href"))); resolved != nil {
				if !sameSite(resolved.Hostname(), base.Hostname()) {
					seen[resolved.String()] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return len(seen)
}

// resolveURL resolves a relative URL against a base URL
func resolveURL(base *url.URL, href string) *url.URL {
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}

	// Skip javascript: and mailto: links
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return nil
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return nil
	}

	resolved := base.ResolveReference(parsed)

	// Only keep http/https URLs
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}

	return resolved
}

func sameSite(a, b string) bool {
	return strings.TrimPrefix(a, "www.") == strings.TrimPrefix(b, "www.")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
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
