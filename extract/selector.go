package extract

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/crawlkit/crawlkit/internal/core"
)

// Selector parses the response body as HTML and runs the compiled
// selector plan for T (derived at runtime from struct tags, see
// buildPlan), yielding an absent result if the document fails to
// parse or any required field has no match.
//
// Field tags, one `crawl:"selector=<css>,<projection>"` per field:
//
//	Title string    `crawl:"selector=h1,text"`
//	Byline *string  `crawl:"selector=.byline,text"`
//	Tags []string   `crawl:"selector=.tag,text"`
//	Canonical string `crawl:"selector=link[rel=canonical],attr=href"`
//
// string fields are required (a miss aborts the whole extractor);
// *string fields are optional; []string fields collect every match in
// document order, possibly empty.
type Selector[T any] struct {
	value T
}

func (Selector[T]) TryBuild(ctx context.Context, resp *core.Response, _ any) (Selector[T], bool) {
	select {
	case <-ctx.Done():
		return Selector[T]{}, false
	default:
	}

	var zero T
	t := reflect.TypeOf(zero)
	plan := planFor(t)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return Selector[T]{}, false
	}

	out := reflect.New(t).Elem()
	for _, fp := range plan.fields {
		sel := doc.Find(fp.selector)
		switch fp.kind {
		case kindRequired:
			if sel.Length() == 0 {
				return Selector[T]{}, false
			}
			out.Field(fp.index).SetString(fp.project(sel.Eq(0)))
		case kindOptional:
			if sel.Length() == 0 {
				continue
			}
			v := fp.project(sel.Eq(0))
			out.Field(fp.index).Set(reflect.ValueOf(&v))
		case kindMulti:
			var vals []string
			sel.Each(func(_ int, s *goquery.Selection) {
				vals = append(vals, fp.project(s))
			})
			out.Field(fp.index).Set(reflect.ValueOf(vals))
		}
	}

	return Selector[T]{value: out.Interface().(T)}, true
}

func (s Selector[T]) Value() T { return s.value }

type fieldKind int

const (
	kindRequired fieldKind = iota
	kindOptional
	kindMulti
)

type fieldPlan struct {
	index    int
	selector string
	attr     string
	useText  bool
	kind     fieldKind
}

func (fp fieldPlan) project(s *goquery.Selection) string {
	if fp.useText {
		return strings.TrimSpace(s.Text())
	}
	v, _ := s.Attr(fp.attr)
	return v
}

type typePlan struct {
	fields []fieldPlan
}

var planCache sync.Map // reflect.Type -> *typePlan

func planFor(t reflect.Type) *typePlan {
	if cached, ok := planCache.Load(t); ok {
		return cached.(*typePlan)
	}
	plan := buildPlan(t)
	actual, _ := planCache.LoadOrStore(t, plan)
	return actual.(*typePlan)
}

func buildPlan(t reflect.Type) *typePlan {
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("extract.Selector: %s is not a struct", t))
	}
	plan := &typePlan{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("crawl")
		if !ok {
			continue
		}
		selector, attr, useText, err := parseCrawlTag(tag)
		if err != nil {
			panic(fmt.Sprintf("extract.Selector: field %s.%s: %v", t, f.Name, err))
		}
		var kind fieldKind
		switch f.Type.Kind() {
		case reflect.String:
			kind = kindRequired
		case reflect.Ptr:
			if f.Type.Elem().Kind() != reflect.String {
				panic(fmt.Sprintf("extract.Selector: field %s.%s: pointer fields must be *string", t, f.Name))
			}
			kind = kindOptional
		case reflect.Slice:
			if f.Type.Elem().Kind() != reflect.String {
				panic(fmt.Sprintf("extract.Selector: field %s.%s: slice fields must be []string", t, f.Name))
			}
			kind = kindMulti
		default:
			panic(fmt.Sprintf("extract.Selector: field %s.%s has unsupported type %s", t, f.Name, f.Type))
		}
		plan.fields = append(plan.fields, fieldPlan{
			index:    i,
			selector: selector,
			attr:     attr,
			useText:  useText,
			kind:     kind,
		})
	}
	return plan
}

// parseCrawlTag parses `selector=<css>,text` or
// `selector=<css>,attr=<name>`, splitting on the top-level comma only
// (bracket depth tracked so attribute selectors like
// `a[href^="/docs"]` don't get split mid-selector).
func parseCrawlTag(tag string) (selector, attr string, useText bool, err error) {
	parts := splitTopLevel(tag, ',')
	if len(parts) != 2 {
		return "", "", false, fmt.Errorf("malformed crawl tag %q", tag)
	}
	sel, ok := strings.CutPrefix(parts[0], "selector=")
	if !ok {
		return "", "", false, fmt.Errorf("crawl tag %q missing selector=", tag)
	}
	proj := parts[1]
	switch {
	case proj == "text":
		return sel, "", true, nil
	case strings.HasPrefix(proj, "attr="):
		return sel, strings.TrimPrefix(proj, "attr="), false, nil
	default:
		return "", "", false, fmt.Errorf("crawl tag %q must specify text or attr=<name>", tag)
	}
}

func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
