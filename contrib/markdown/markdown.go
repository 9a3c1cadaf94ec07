// Package markdown converts an isolated HTML content node (see package
// readability) into Markdown and checks the result against a small set
// of structural invariants before a handler emits it.
//
// Conversion favors semantic fidelity over visual fidelity: headings
// map directly, code blocks are preserved verbatim, tables convert to
// GFM, and links/images are left unresolved for the caller to handle.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	gomd "github.com/gomarkdown/markdown"
	gmast "github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
	"golang.org/x/net/html"
)

// LinkKind classifies a reference extracted alongside the converted
// Markdown, so a caller can decide which ones to turn into Visit
// actions versus leave as plain text.
type LinkKind string

const (
	KindNavigation LinkKind = "navigation"
	KindImage      LinkKind = "image"
	KindAnchor     LinkKind = "anchor"
)

type LinkRef struct {
	Raw  string
	Kind LinkKind
}

// Result is a converted document: the Markdown body plus every link
// and image reference found in it, in document order.
type Result struct {
	Markdown []byte
	Links    []LinkRef
}

// Convert transforms an HTML content node into Markdown using
// html-to-markdown/v2's commonmark, base, and table plugins.
func Convert(node *html.Node) (Result, error) {
	if node == nil {
		return Result{}, errors.New("markdown: cannot convert nil node")
	}

	conv := converter.NewConverter(converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	))
	out, err := conv.ConvertNode(node)
	if err != nil {
		return Result{}, fmt.Errorf("markdown: conversion failed: %w", err)
	}

	return Result{Markdown: out, Links: extractLinkRefs(node)}, nil
}

func extractLinkRefs(node *html.Node) []LinkRef {
	var refs []LinkRef
	goquery.NewDocumentFromNode(node).Find("a[href], img[src]").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "a":
			if href, ok := s.Attr("href"); ok {
				refs = append(refs, toLinkRef("a", href))
			}
		case "img":
			if src, ok := s.Attr("src"); ok {
				refs = append(refs, toLinkRef("img", src))
			}
		}
	})
	return refs
}

func toLinkRef(tag, raw string) LinkRef {
	if tag == "img" {
		return LinkRef{Raw: raw, Kind: KindImage}
	}
	if strings.HasPrefix(raw, "#") {
		return LinkRef{Raw: raw, Kind: KindAnchor}
	}
	return LinkRef{Raw: raw, Kind: KindNavigation}
}

// StructureError reports a Markdown document that fails a structural
// check (see CheckStructure).
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string { return "markdown: " + e.Reason }

// CheckStructure enforces the minimal shape a Markdown document
// coming out of Convert should have: exactly one H1, no content
// before it, and no skipped heading levels. Callers that don't need a
// single-document-per-page invariant can skip this and use the
// Markdown straight out of Convert.
func CheckStructure(content []byte) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return &StructureError{Reason: "content is empty"}
	}

	doc := gomd.Parse(content, gmparser.New())

	var headings []*gmast.Heading
	var contentBeforeH1 bool

	gmast.WalkFunc(doc, func(node gmast.Node, entering bool) gmast.WalkStatus {
		switch n := node.(type) {
		case *gmast.Heading:
			if entering {
				headings = append(headings, n)
			}
		case *gmast.Paragraph, *gmast.List, *gmast.Table, *gmast.CodeBlock:
			if entering && len(headings) == 0 {
				contentBeforeH1 = true
			}
		}
		return gmast.GoToNext
	})

	h1Count := 0
	for _, h := range headings {
		if h.Level == 1 {
			h1Count++
		}
	}
	switch {
	case h1Count == 0:
		return &StructureError{Reason: "no H1 heading"}
	case h1Count > 1:
		return &StructureError{Reason: fmt.Sprintf("%d H1 headings, expected exactly one", h1Count)}
	case contentBeforeH1:
		return &StructureError{Reason: "content exists before the first H1"}
	}

	prevLevel := 0
	for _, h := range headings {
		if prevLevel != 0 && h.Level > prevLevel+1 {
			return &StructureError{Reason: fmt.Sprintf("heading level skipped: H%d follows H%d", h.Level, prevLevel)}
		}
		prevLevel = h.Level
	}
	return nil
}

// Title returns the text of the document's first H1 line, stripping
// common inline markdown emphasis/link markers.
func Title(content []byte) (string, error) {
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, []byte("# ")) {
			continue
		}
		title := stripInlineMarkdown(strings.TrimSpace(string(line[2:])))
		if title == "" {
			return "", &StructureError{Reason: "H1 heading has no text"}
		}
		return title, nil
	}
	return "", &StructureError{Reason: "no H1 heading found"}
}

func stripInlineMarkdown(text string) string {
	replacer := strings.NewReplacer("`", "", "**", "", "__", "", "*", "", "_", "", "[", "", "]", "")
	return replacer.Replace(text)
}
