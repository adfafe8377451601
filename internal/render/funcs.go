package render

import (
	"errors"
	"text/template"

	"git.home.luguber.info/inful/simplesite/internal/highlight"
	"git.home.luguber.info/inful/simplesite/internal/locale"
)

var errNotLocalized = errors.New("str is unavailable: the build has no localization table")

// PageData is the dot value every template is executed with.
type PageData struct {
	// Locale is empty for an unlocalized build.
	Locale string
	// Lang is the canonical language tag of Locale, suitable for <html lang>.
	Lang string
	// Strings is the active locale's string table, nil when unlocalized.
	Strings map[string]string
	// Page is the template's logical name.
	Page string
	// Path is the page's slash-separated output path relative to the locale root.
	Path string
}

func (e *Engine) pageData(t Template, out string) PageData {
	data := PageData{
		Locale:  e.Locale(),
		Strings: e.opts.Strings.Strings(e.Locale()),
		Page:    t.Name,
		Path:    e.opts.Mapper.OutputName(t.Name),
	}
	if data.Locale != "" {
		data.Lang = locale.Lang(data.Locale)
	}
	return data
}

func (e *Engine) funcs(r *Resolver) template.FuncMap {
	return template.FuncMap{
		"autolink":     r.Resolve,
		"str":          e.lookupString,
		"highlightCSS": highlight.CSS,
		"highlight":    highlight.Code,
		"markdown":     e.opts.Markdown.ToHTML,
	}
}

func (e *Engine) lookupString(key string) (string, error) {
	if e.opts.Strings == nil {
		return "", errNotLocalized
	}
	return e.opts.Strings.Lookup(e.Locale(), key)
}
