// Package readability isolates the main content of an arbitrary HTML
// page, stripping navigation/header/footer/sidebar chrome so a handler
// can hand clean content to package markdown without writing
// site-specific scraping rules.
//
// Extraction is layered:
//  1. semantic containers (<main>, <article>, [role="main"])
//  2. known framework-specific content containers (docs-site
//     generators, blog engines)
//  3. explicit chrome removal followed by text-density scoring
//
// Each layer only runs if the previous one found nothing meaningful.
package readability

import (
	"bytes"
	"context"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/crawlkit/crawlkit/internal/core"
)

// Params tunes the scoring heuristics. A zero Params uses DefaultParams.
type Params struct {
	LinkDensityThreshold float64
	BodySpecificityBias  float64
	CustomSelectors      []string
}

var DefaultParams = Params{
	LinkDensityThreshold: 0.5,
	BodySpecificityBias:  0.6,
}

// Document is the result of isolating a page's main content: the full
// parsed tree plus the node identified as the meaningful container.
// Document itself is the extractor a handler parameter declares — see
// package extract for the TryBuild contract every extractor honors.
// Extraction always runs with DefaultParams; use ExtractWithParams
// directly (outside handler dispatch) to tune the heuristics.
type Document struct {
	root    *html.Node
	content *html.Node
}

// Root returns the whole parsed document, useful for resolving
// relative links discovered outside the content node.
func (d Document) Root() *html.Node { return d.root }

// Content returns the isolated content node, or nil if extraction
// found nothing meaningful.
func (d Document) Content() *html.Node { return d.content }

func (Document) TryBuild(_ context.Context, resp *core.Response, _ any) (Document, bool) {
	return ExtractWithParams(resp.Body(), DefaultParams)
}

// ExtractWithParams runs the same layered extraction TryBuild does,
// but with caller-supplied Params, for use outside handler dispatch
// (handler parameter types carry no runtime configuration).
func ExtractWithParams(body []byte, params Params) (Document, bool) {
	if params.LinkDensityThreshold == 0 && params.BodySpecificityBias == 0 && len(params.CustomSelectors) == 0 {
		params = DefaultParams
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil || !hasHTMLElement(doc) {
		return Document{}, false
	}
	content := isolateContent(doc, params)
	if content == nil {
		return Document{}, false
	}
	return Document{root: doc, content: content}, true
}

func hasHTMLElement(doc *html.Node) bool {
	var find func(*html.Node) bool
	find = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "html" {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if find(c) {
				return true
			}
		}
		return false
	}
	return find(doc)
}

func isolateContent(doc *html.Node, params Params) *html.Node {
	if n := extractSemanticContainer(doc); n != nil {
		return n
	}
	if n := extractKnownContainer(doc, params.CustomSelectors); n != nil {
		return n
	}
	return extractByDensityScoring(doc, params)
}

func extractSemanticContainer(doc *html.Node) *html.Node {
	gq := goquery.NewDocumentFromNode(doc)
	for _, sel := range []string{"main", "article", `[role="main"]`} {
		if found := gq.Find(sel).First(); found.Length() > 0 {
			if node := found.Nodes[0]; isMeaningful(node) {
				return node
			}
		}
	}
	return nil
}

// knownContainerSelectors are content-container class/id hooks common
// across static-site generators and blog engines, checked in priority
// order before falling back to density scoring.
var knownContainerSelectors = []string{
	".content", ".doc-content", ".markdown-body", "#docs-content",
	".rst-content", ".theme-doc-markdown", ".md-content",
	".docMainContainer", ".book-body", ".markdown-section",
	".md-main__inner", ".document", ".theme-default-content",
	".content__default", "#main", ".post-content", ".entry-content",
	".article-content",
}

func extractKnownContainer(doc *html.Node, custom []string) *html.Node {
	gq := goquery.NewDocumentFromNode(doc)
	seen := make(map[string]bool, len(knownContainerSelectors)+len(custom))
	for _, sel := range append(append([]string{}, knownContainerSelectors...), custom...) {
		if seen[sel] {
			continue
		}
		seen[sel] = true
		if found := gq.Find(sel).First(); found.Length() > 0 {
			if node := found.Nodes[0]; isMeaningful(node) {
				return node
			}
		}
	}
	return nil
}

func extractByDensityScoring(doc *html.Node, params Params) *html.Node {
	cleaned := cloneNode(doc)
	removeChrome(cleaned)
	best := findBestContentContainer(cleaned, params)
	if best == nil || !isMeaningful(best) {
		return nil
	}
	return best
}

func cloneNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	cloned := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace}
	if len(n.Attr) > 0 {
		cloned.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if cc := cloneNode(c); cc != nil {
			cloned.AppendChild(cc)
		}
	}
	return cloned
}

var chromeElements = map[string]bool{"nav": true, "header": true, "footer": true, "aside": true}

var chromeKeywords = []string{
	"nav", "sidebar", "menu", "breadcrumb", "search", "footer",
	"header", "cookie", "consent", "version", "language", "theme",
	"edit", "github",
}

func removeChrome(root *html.Node) {
	var remove []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.ElementNode && (chromeElements[n.Data] || hasChromeAttr(n)) {
			remove = append(remove, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	for _, n := range remove {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

func hasChromeAttr(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" && attr.Key != "id" {
			continue
		}
		lower := strings.ToLower(attr.Val)
		for _, kw := range chromeKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func findBestContentContainer(root *html.Node, params Params) *html.Node {
	var candidates []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.ElementNode && (n.Data == "div" || n.Data == "section" || n.Data == "body") {
			candidates = append(candidates, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)
	if len(candidates) == 0 {
		return nil
	}

	scores := make(map[*html.Node]float64, len(candidates))
	var bodyNode *html.Node
	var bodyScore float64
	for _, c := range candidates {
		score := contentScore(c, params.LinkDensityThreshold)
		scores[c] = score
		if c.Data == "body" {
			bodyNode, bodyScore = c, score
		}
	}

	var best *html.Node
	var bestScore float64
	for n, s := range scores {
		if s > bestScore {
			best, bestScore = n, s
		}
	}

	if best == bodyNode && bodyNode != nil {
		for n, s := range scores {
			if n == bodyNode {
				continue
			}
			if s >= params.BodySpecificityBias*bodyScore && s > bestScore*0.9 {
				best, bestScore = n, s
				break
			}
		}
	}
	return best
}

func contentScore(node *html.Node, linkDensityThreshold float64) float64 {
	var nonWhitespace, paragraphs, headings, codeBlocks, listItems, textLen, linkTextLen int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		switch n.Type {
		case html.TextNode:
			textLen += len(n.Data)
			for _, r := range n.Data {
				if !unicode.IsSpace(r) {
					nonWhitespace++
				}
			}
		case html.ElementNode:
			switch n.Data {
			case "p":
				paragraphs++
			case "h1", "h2", "h3":
				headings++
			case "pre":
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "code" {
						codeBlocks++
						break
					}
				}
			case "code":
				if n.Parent == nil || n.Parent.Data != "pre" {
					codeBlocks++
				}
			case "li":
				listItems++
			case "a":
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						linkTextLen += len(strings.TrimSpace(c.Data))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	score := float64(nonWhitespace)/50.0 + float64(paragraphs)*5.0 + float64(headings)*10.0 +
		float64(codeBlocks)*15.0 + float64(listItems)*2.0
	if textLen > 0 {
		density := float64(linkTextLen) / float64(textLen)
		if density > linkDensityThreshold {
			score -= (density - linkDensityThreshold) * score
		}
	}
	return score
}

// isMeaningful rejects nodes that are empty, or pure navigation: it
// requires a minimum amount of non-whitespace text and either a
// paragraph/code block or a heading backed by real text.
func isMeaningful(node *html.Node) bool {
	if node == nil {
		return false
	}
	var textLen, nonWhitespace, headings, paragraphs, codeBlocks, links, linkTextLen int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		switch n.Type {
		case html.TextNode:
			textLen += len(n.Data)
			for _, r := range n.Data {
				if !unicode.IsSpace(r) {
					nonWhitespace++
				}
			}
		case html.ElementNode:
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				headings++
			case "p":
				paragraphs++
			case "pre":
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "code" {
						codeBlocks++
						break
					}
				}
			case "code":
				codeBlocks++
			case "a":
				links++
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						linkTextLen += len(strings.TrimSpace(c.Data))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	const minNonWhitespace = 50
	const maxLinkDensity = 0.8

	if nonWhitespace < minNonWhitespace {
		return false
	}
	if textLen > 0 {
		density := float64(linkTextLen) / float64(textLen)
		if density > maxLinkDensity && links > 2 {
			return false
		}
	}
	hasContent := paragraphs >= 1 || codeBlocks >= 1
	hasHeadingsWithText := headings > 0 && nonWhitespace >= 20
	return hasContent || hasHeadingsWithText
}
