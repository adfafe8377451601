package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
)

// Template is a discovered page template.
type Template struct {
	// Name is the slash-separated path relative to the source root.
	Name string
	// Source is the on-disk location of the template body.
	Source string
}

// Set holds every template of a build. Each page is parsed on its own so the
// blocks it defines stay private to it; at render time the other pages are
// made available by logical name so pages can include each other.
type Set struct {
	templates []Template
	byName    map[string]int
	parsed    []*template.Template
}

// errUnbound is returned by the placeholder functions used at parse time.
var errUnbound = errors.New("template function called outside a render")

// placeholderFuncs declares every function name a template may reference.
// Real implementations are bound per render via Funcs.
func placeholderFuncs() template.FuncMap {
	return template.FuncMap{
		"autolink":     func(string) ([]Link, error) { return nil, errUnbound },
		"str":          func(string) (string, error) { return "", errUnbound },
		"highlightCSS": func(string) (string, error) { return "", errUnbound },
		"highlight":    func(string, string) (string, error) { return "", errUnbound },
		"markdown":     func(string) (string, error) { return "", errUnbound },
	}
}

func newTemplate(name string) *template.Template {
	return template.New(name).Option("missingkey=error").Funcs(placeholderFuncs())
}

// ParseSet reads and parses templates in order. The order is preserved and is
// the order autolink reports matches in.
func ParseSet(templates []Template) (*Set, error) {
	s := &Set{
		templates: templates,
		byName:    make(map[string]int, len(templates)),
		parsed:    make([]*template.Template, 0, len(templates)),
	}

	for i, t := range templates {
		body, err := os.ReadFile(filepath.Clean(t.Source))
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read template").
				Fatal().
				WithContext("path", t.Source).
				WithContext("template", t.Name).
				Build()
		}
		parsed, err := newTemplate(t.Name).Parse(string(body))
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryRender, "parse template").
				Fatal().
				WithContext("path", t.Source).
				WithContext("template", t.Name).
				Build()
		}
		s.parsed = append(s.parsed, parsed)
		s.byName[t.Name] = i
	}
	return s, nil
}

// Templates returns the templates in discovery order. The slice is shared.
func (s *Set) Templates() []Template {
	return s.templates
}

// Len returns the number of templates.
func (s *Set) Len() int {
	return len(s.templates)
}

// Lookup returns the template with the given logical name.
func (s *Set) Lookup(name string) (Template, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Template{}, false
	}
	return s.templates[i], true
}

// namespace assembles the template tree for executing name. Every other page
// and its blocks are added in discovery order, then the page's own trees are
// added last so its definitions win over same-named blocks elsewhere.
func (s *Set) namespace(name string) (*template.Template, error) {
	page, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no template named %q", name)
	}
	own := s.parsed[s.byName[page.Name]]

	ns := newTemplate(name)
	for _, other := range s.parsed {
		if other == own {
			continue
		}
		if err := addTrees(ns, other); err != nil {
			return nil, err
		}
	}
	if err := addTrees(ns, own); err != nil {
		return nil, err
	}
	return ns, nil
}

func addTrees(dst, src *template.Template) error {
	for _, t := range src.Templates() {
		if t.Tree == nil {
			continue
		}
		if _, err := dst.AddParseTree(t.Name(), t.Tree); err != nil {
			return err
		}
	}
	return nil
}

// execute evaluates the named template against data with funcs bound.
func (s *Set) execute(name string, funcs template.FuncMap, data any) ([]byte, error) {
	ns, err := s.namespace(name)
	if err != nil {
		return nil, err
	}
	ns.Funcs(funcs)

	var buf bytes.Buffer
	if err := ns.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
