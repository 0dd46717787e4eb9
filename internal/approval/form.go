package approval

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// defaultFormMethod is used for forms without a method attribute. The ACM
// approval form is submitted with POST.
const defaultFormMethod = http.MethodPost

// Form is an HTML form found on a fetched page, reduced to what a browser
// would send when its first submit button is pressed.
type Form struct {
	Action *url.URL
	Method string
	fields []formField
}

type formField struct {
	name, value string
}

// Values returns the successful controls of the form.
func (f *Form) Values() url.Values {
	vals := url.Values{}
	for _, ff := range f.fields {
		vals.Add(ff.name, ff.value)
	}
	return vals
}

// encode url-encodes the controls in document order.
func (f *Form) encode() string {
	return strings.Join(lo.Map(f.fields, func(ff formField, _ int) string {
		return url.QueryEscape(ff.name) + "=" + url.QueryEscape(ff.value)
	}), "&")
}

func (f *Form) newRequest(ctx context.Context) (*http.Request, error) {
	if f.Method == http.MethodGet {
		u := *f.Action
		u.RawQuery = f.encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	req, err := http.NewRequestWithContext(ctx, f.Method, f.Action.String(), strings.NewReader(f.encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// selectForm picks the approval form. The approval page is assumed to carry
// the approval form first; a non-empty actionPath narrows the choice to forms
// whose action path ends with it.
func selectForm(forms []*Form, actionPath string) (*Form, error) {
	candidates := forms
	if actionPath != "" {
		candidates = lo.Filter(forms, func(f *Form, _ int) bool {
			return strings.HasSuffix(f.Action.Path, actionPath)
		})
	}

	f, ok := lo.First(candidates)
	if !ok {
		return nil, errors.Wrapf(ErrNoForm, "%d form(s) on page, action filter %q", len(forms), actionPath)
	}
	return f, nil
}

// parseForms extracts every form of an HTML document. Relative actions are
// resolved against base.
func parseForms(body string, base *url.URL) ([]*Form, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html")
	}

	var forms []*Form
	var parseErr error
	walk(doc, func(n *html.Node) {
		if parseErr != nil || n.Type != html.ElementNode || n.DataAtom != atom.Form {
			return
		}
		f, err := newForm(n, base)
		if err != nil {
			parseErr = err
			return
		}
		forms = append(forms, f)
	})
	return forms, parseErr
}

func newForm(n *html.Node, base *url.URL) (*Form, error) {
	action := base
	if raw, _ := attr(n, "action"); strings.TrimSpace(raw) != "" {
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid form action %q", raw)
		}
		action = base.ResolveReference(ref)
	}

	method, _ := attr(n, "method")
	method = strings.ToUpper(strings.TrimSpace(method))
	if method != http.MethodGet && method != http.MethodPost {
		method = defaultFormMethod
	}

	f := &Form{Action: action, Method: method}
	clicked := false
	click := func(name, value string) {
		if !clicked {
			clicked = true
			f.add(name, value)
		}
	}

	walk(n, func(c *html.Node) {
		if c == n || c.Type != html.ElementNode {
			return
		}
		if _, disabled := attr(c, "disabled"); disabled {
			return
		}
		name, _ := attr(c, "name")
		typ, _ := attr(c, "type")
		typ = strings.ToLower(typ)

		switch c.DataAtom {
		case atom.Input:
			switch typ {
			case "checkbox", "radio":
				if _, checked := attr(c, "checked"); checked {
					f.add(name, valueOr(c, "on"))
				}
			case "submit":
				click(name, valueOr(c, ""))
			case "image", "button", "reset", "file":
			default:
				f.add(name, valueOr(c, ""))
			}
		case atom.Button:
			if typ == "" || typ == "submit" {
				click(name, valueOr(c, ""))
			}
		case atom.Textarea:
			f.add(name, textContent(c))
		case atom.Select:
			f.addSelect(c, name)
		}
	})
	return f, nil
}

// add appends a control; unnamed controls are never submitted.
func (f *Form) add(name, value string) {
	if name == "" {
		return
	}
	f.fields = append(f.fields, formField{name: name, value: value})
}

// addSelect adds the selected options of a select element; a single-choice
// select with nothing selected submits its first option.
func (f *Form) addSelect(sel *html.Node, name string) {
	var options []*html.Node
	walk(sel, func(c *html.Node) {
		if c.Type == html.ElementNode && c.DataAtom == atom.Option {
			options = append(options, c)
		}
	})

	selected := lo.Filter(options, func(o *html.Node, _ int) bool {
		_, ok := attr(o, "selected")
		return ok
	})
	if _, multiple := attr(sel, "multiple"); !multiple {
		if len(selected) == 0 {
			selected = lo.Slice(options, 0, 1)
		}
		selected = lo.Slice(selected, 0, 1)
	}

	for _, o := range selected {
		v, ok := attr(o, "value")
		if !ok {
			v = strings.TrimSpace(textContent(o))
		}
		f.add(name, v)
	}
}

func valueOr(n *html.Node, def string) string {
	if v, ok := attr(n, "value"); ok {
		return v
	}
	return def
}
