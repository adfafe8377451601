// Package paths maps logical template names and asset paths onto the output tree.
//
// Every function here is pure: no filesystem access, no state.
//
// Output naming policy: the template's bare filename is cut at its first
// extension separator and the configured output extension is appended, so
// "blog/post.html.tmpl" and "blog/post.tmpl" both render to "blog/post.html".
// Leading dots of hidden files are not treated as separators.
package paths

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	DefaultTemplateExtension = ".tmpl"
	DefaultOutputExtension   = ".html"
)

// Mapper computes output locations for one build configuration.
type Mapper struct {
	TemplateExt string
	OutputExt   string
}

// NewMapper returns a Mapper, substituting defaults for empty extensions.
func NewMapper(templateExt, outputExt string) Mapper {
	if templateExt == "" {
		templateExt = DefaultTemplateExtension
	}
	if outputExt == "" {
		outputExt = DefaultOutputExtension
	}
	return Mapper{TemplateExt: templateExt, OutputExt: outputExt}
}

// IsTemplate reports whether filename carries the template extension.
func (m Mapper) IsTemplate(filename string) bool {
	return filepath.Ext(filename) == m.TemplateExt
}

// OutputName converts a logical template name to its slash-separated output
// name relative to the locale root.
func (m Mapper) OutputName(templateName string) string {
	dir, file := path.Split(filepath.ToSlash(templateName))
	return dir + StripExtensions(file) + m.OutputExt
}

// OutputPath joins outputRoot, locale and the mapped template name.
// An empty locale yields the unlocalized layout outputRoot/<name>.
func (m Mapper) OutputPath(templateName, locale, outputRoot string) string {
	return filepath.Join(LocaleDir(outputRoot, locale), filepath.FromSlash(m.OutputName(templateName)))
}

// LocaleDir returns the output directory for locale, or outputRoot itself when
// locale is empty.
func LocaleDir(outputRoot, locale string) string {
	if locale == "" {
		return filepath.Clean(outputRoot)
	}
	return filepath.Join(outputRoot, locale)
}

// TemplateDir returns the logical directory of a template name, "." for the root.
func TemplateDir(templateName string) string {
	return path.Dir(filepath.ToSlash(templateName))
}

// StripExtensions removes everything from the first extension separator of a
// bare filename: "index.html.tmpl" -> "index".
func StripExtensions(filename string) string {
	trimmed := strings.TrimLeft(filename, ".")
	lead := len(filename) - len(trimmed)
	if i := strings.IndexByte(trimmed, '.'); i >= 0 {
		return filename[:lead+i]
	}
	return filename
}
