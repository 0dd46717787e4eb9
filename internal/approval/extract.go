package approval

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FieldExtractor pulls one labelled value out of the approval page.
type FieldExtractor interface {
	ExtractField(page, label string) (string, error)
}

// NewFieldExtractor returns the extractor registered under name ("regex" or
// "html").
func NewFieldExtractor(name string) (FieldExtractor, error) {
	switch name {
	case "regex", "":
		return RegexExtractor{}, nil
	case "html":
		return HTMLExtractor{}, nil
	default:
		return nil, errors.Newf("unknown field extractor %q", name)
	}
}

// RegexExtractor matches the page layout ACM uses: a bold label followed,
// possibly lines later, by a right-column table cell whose first token is the
// value.
type RegexExtractor struct{}

var fieldPatterns = lo.SliceToMap(fieldLabels, func(label string) (string, *regexp.Regexp) {
	return label, fieldPattern(label)
})

func fieldPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<b>` + regexp.QuoteMeta(label) + `</b>.*?<td class=['"]right-column['"]>\s+(\S+)\s`)
}

func (RegexExtractor) ExtractField(page, label string) (string, error) {
	re, ok := fieldPatterns[label]
	if !ok {
		re = fieldPattern(label)
	}
	return single(label, lo.Map(re.FindAllStringSubmatch(page, -1), func(m []string, _ int) string {
		return m[1]
	}))
}

// single returns the only value found for label. Absence and duplication are
// both parse errors.
func single(label string, values []string) (string, error) {
	switch len(values) {
	case 0:
		return "", errors.Wrapf(ErrPageParse, "field %q not found", label)
	case 1:
		return values[0], nil
	default:
		return "", errors.Wrapf(ErrPageParse, "field %q found %d times", label, len(values))
	}
}

// pagePreparer is implemented by extractors that do per-page work once before
// the fields are looked up.
type pagePreparer interface {
	prepare(page string) (FieldExtractor, error)
}

// HTMLExtractor finds the same cell by walking the parsed document, so it
// tolerates attribute order, quoting and inline markup inside the cell.
type HTMLExtractor struct{}

func (e HTMLExtractor) ExtractField(page, label string) (string, error) {
	doc, err := e.prepare(page)
	if err != nil {
		return "", err
	}
	return doc.ExtractField(page, label)
}

func (HTMLExtractor) prepare(page string) (FieldExtractor, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, errors.Wrap(ErrPageParse, err.Error())
	}

	var elems []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode {
			elems = append(elems, n)
		}
	})
	return parsedDocument{elems: elems}, nil
}

// parsedDocument holds the elements of an already parsed page in document
// order. Its ExtractField ignores the page argument.
type parsedDocument struct {
	elems []*html.Node
}

func (d parsedDocument) ExtractField(_, label string) (string, error) {
	var values []string
	for i, n := range d.elems {
		if n.DataAtom != atom.B || strings.TrimSpace(textContent(n)) != label {
			continue
		}
		if v, ok := valueAfter(d.elems[i+1:]); ok {
			values = append(values, v)
		}
	}
	return single(label, values)
}

// valueAfter returns the first token of the next right-column cell.
func valueAfter(elems []*html.Node) (string, bool) {
	cell, ok := lo.Find(elems, func(n *html.Node) bool {
		return n.DataAtom == atom.Td && hasClass(n, "right-column")
	})
	if !ok {
		return "", false
	}
	return lo.First(strings.Fields(textContent(cell)))
}

// walk visits n and its descendants in document order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	return lo.Contains(strings.Fields(v), class)
}
