package metadata

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// document holds what the importer reads from a page: the first content of
// each meta property, the first content of each meta name, and the title.
type document struct {
	property map[string]string
	name     map[string]string
	title    string
}

// meta returns the content of meta[property=key], falling back to
// meta[name=key]. Empty contents count as absent.
func (d *document) meta(key string) string {
	if v := d.property[key]; v != "" {
		return v
	}
	return d.name[key]
}

func parseDocument(r io.Reader) (*document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := &document{property: make(map[string]string), name: make(map[string]string)}
	titleSeen := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				d.addMeta(n)
			case atom.Title:
				if !titleSeen {
					titleSeen = true
					d.title = strings.TrimSpace(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return d, nil
}

// addMeta records the first element for each key, even when its content is
// empty, matching a first-match selector lookup.
func (d *document) addMeta(n *html.Node) {
	var prop, name, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "property":
			prop = a.Val
		case "name":
			name = a.Val
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	if _, seen := d.property[prop]; prop != "" && !seen {
		d.property[prop] = content
	}
	if _, seen := d.name[name]; name != "" && !seen {
		d.name[name] = content
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Parse extracts a Result from an HTML page fetched from pageURL.
func Parse(r io.Reader, pageURL string) (Result, error) {
	d, err := parseDocument(r)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Headline: d.meta("og:title"),
		Subtitle: d.meta("og:description"),
		ImageURL: d.meta("og:image"),
		SiteURL:  d.meta("og:site_name"),
	}
	if res.Headline == "" {
		res.Headline = d.title
	}
	if res.Subtitle == "" {
		res.Subtitle = d.meta("description")
	}
	base, err := url.Parse(pageURL)
	if err == nil {
		if res.SiteURL == "" {
			res.SiteURL = strings.TrimPrefix(base.Hostname(), "www.")
		}
		if res.ImageURL != "" {
			if ref, err := url.Parse(res.ImageURL); err == nil {
				res.ImageURL = base.ResolveReference(ref).String()
			}
		}
	}
	return res, nil
}
