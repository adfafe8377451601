package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	m := NewMapper(".jinja", ".html")

	tests := []struct {
		name     string
		template string
		locale   string
		want     string
	}{
		{"localized", "blog/post.html.jinja", "en", filepath.Join("out", "en", "blog", "post.html")},
		{"unlocalized", "blog/post.html.jinja", "", filepath.Join("out", "blog", "post.html")},
		{"root template", "index.html.jinja", "jp", filepath.Join("out", "jp", "index.html")},
		{"single extension", "about.jinja", "en", filepath.Join("out", "en", "about.html")},
		{"dotted directory kept", "v1.2/notes.md.jinja", "en", filepath.Join("out", "en", "v1.2", "notes.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.OutputPath(tt.template, tt.locale, "out"))
		})
	}
}

func TestStripExtensions(t *testing.T) {
	assert.Equal(t, "index", StripExtensions("index.html.jinja"))
	assert.Equal(t, "index", StripExtensions("index"))
	assert.Equal(t, ".hidden", StripExtensions(".hidden.tmpl"))
	assert.Equal(t, "..x", StripExtensions("..x.a.b"))
}

func TestIsTemplate(t *testing.T) {
	m := NewMapper("", "")

	assert.Equal(t, DefaultTemplateExtension, m.TemplateExt)
	assert.True(t, m.IsTemplate("index.html.tmpl"))
	assert.True(t, m.IsTemplate("blog/post.tmpl"))
	assert.False(t, m.IsTemplate("img/cat.jpg"))
	assert.False(t, m.IsTemplate("notes.tmpl.bak"))
}

func TestTemplateDirAndLocaleDir(t *testing.T) {
	assert.Equal(t, ".", TemplateDir("index.html.tmpl"))
	assert.Equal(t, "blog", TemplateDir("blog/post.html.tmpl"))
	assert.Equal(t, filepath.Join("out", "jp"), LocaleDir("out", "jp"))
	assert.Equal(t, "out", LocaleDir("out/", ""))
}
