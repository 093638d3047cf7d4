// Package page holds a server-rendered admin page in memory and exposes the
// fields and slots the operation controller reads and reconciles.
//
// Every lookup degrades gracefully: a missing element yields nil and writes
// to it are skipped.
package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/Rorical/Ausmalbar/internal/models"
)

// Kind tells which admin page a document is.
type Kind int

const (
	OtherPage Kind = iota
	GeneratePage
	ConfirmPage
)

func (k Kind) String() string {
	switch k {
	case GeneratePage:
		return "generate"
	case ConfirmPage:
		return "confirm"
	default:
		return "other"
	}
}

// Allows reports whether intent can be performed on a page of this kind.
// Submit belongs to the generation page, the others to the confirmation page.
func (k Kind) Allows(intent models.Intent) bool {
	if intent == models.Submit {
		return k == GeneratePage
	}
	return k == ConfirmPage
}

// Element ids, classes and names the page contract is built on.
const (
	ConfirmFormID     = "confirm-form"
	GenerateFormID    = "coloringpage_form"
	PromptID          = "prompt"
	HiddenPromptID    = "hidden_prompt"
	SystemPromptID    = "system_prompt_select"
	SystemPromptInput = "system_prompt_input"
	FormActionID      = "form_action"
	CSRFFieldName     = "csrfmiddlewaretoken"
	PreviewContainer  = "preview-container"
	PreviewThumbnail  = "preview-thumbnail"
	PreviewField      = "preview-field"
	PreviewValue      = "value"
	FlashMessageList  = "messagelist"
)

type Document struct {
	url  *url.URL
	root *html.Node
}

// Parse reads an HTML page served at rawURL.
func Parse(rawURL string, r io.Reader) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", rawURL, err)
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{url: u, root: root}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(rawURL, body string) (*Document, error) {
	return Parse(rawURL, strings.NewReader(body))
}

func (d *Document) URL() *url.URL {
	u := *d.url
	return &u
}

// Resolve turns a possibly relative reference into an absolute URL against
// the document location.
func (d *Document) Resolve(ref string) (string, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return d.url.ResolveReference(r).String(), nil
}

func (d *Document) Kind() Kind {
	switch {
	case d.ByID(ConfirmFormID) != nil:
		return ConfirmPage
	case d.ByID(GenerateFormID) != nil:
		return GeneratePage
	default:
		return OtherPage
	}
}

func (d *Document) ByID(id string) *html.Node {
	return find(d.root, func(n *html.Node) bool {
		return attr(n, "id") == id
	})
}

func (d *Document) ByName(name string) *html.Node {
	return find(d.root, func(n *html.Node) bool {
		return attr(n, "name") == name
	})
}

func (d *Document) ByClass(class string) *html.Node {
	return find(d.root, func(n *html.Node) bool {
		return hasClass(n, class)
	})
}

// Form returns the page's main form.
func (d *Document) Form() *html.Node {
	if f := d.ByID(ConfirmFormID); f != nil {
		return f
	}
	if f := d.ByID(GenerateFormID); f != nil {
		return f
	}
	return find(d.root, func(n *html.Node) bool {
		return n.Data == "form"
	})
}

// Render writes the current tree, reconciled writes included.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// walk visits n and its descendants depth first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

func setText(n *html.Node, text string) {
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// elementIndex is the 1-based position of n among its parent's element
// children, the nth-child numbering.
func elementIndex(n *html.Node) int {
	if n.Parent == nil {
		return 1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		i++
		if c == n {
			return i
		}
	}
	return 0
}
