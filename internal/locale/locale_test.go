package locale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_TOMLPreservesDeclarationOrder(t *testing.T) {
	path := writeFile(t, "strings.toml", `
[en]
title = "Hello"

[jp]
title = "こんにちは"

[fr]
title = "Bonjour"
`)

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "jp", "fr"}, table.Locales())
	primary, ok := table.Primary()
	require.True(t, ok)
	assert.Equal(t, "en", primary)
	assert.Equal(t, "Bonjour", table.Strings("fr")["title"])
}

func TestLoad_TOMLOrderIsNotAlphabetic(t *testing.T) {
	path := writeFile(t, "strings.toml", "[zh]\na = \"1\"\n[de]\na = \"2\"\n")

	table, err := Load(path)
	require.NoError(t, err)

	primary, _ := table.Primary()
	assert.Equal(t, "zh", primary)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "strings.yaml", `
jp:
  title: こんにちは
en:
  title: Hello
fr:
`)

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"jp", "en", "fr"}, table.Locales())
	assert.Empty(t, table.Strings("fr"))
	assert.NotNil(t, table.Strings("fr"))
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"broken toml", "strings.toml", "[en\ntitle = "},
		{"non-table toml value", "strings.toml", "title = \"Hello\"\n"},
		{"integer toml locale", "strings.toml", "en = 5\n"},
		{"scalar before tables", "strings.toml", "title = \"Hello\"\n[en]\nhi = \"Hi\"\n"},
		{"nested toml table", "strings.toml", "[en.nav]\nhome = \"Home\"\n"},
		{"yaml scalar root", "strings.yaml", "just text\n"},
		{"yaml scalar locale", "strings.yml", "en: hello\n"},
		{"yaml duplicate locale", "strings.yaml", "en:\n  a: b\nen:\n  a: c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLocalizationMalformed)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			got, _ := classified.Context().GetString("path")
			assert.Equal(t, path, got)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocalizationNotFound)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_EmptyFile(t *testing.T) {
	for _, name := range []string{"strings.toml", "strings.yaml"} {
		table, err := Load(writeFile(t, name, ""))
		require.NoError(t, err, name)
		assert.True(t, table.Empty(), name)
		_, ok := table.Primary()
		assert.False(t, ok, name)
	}
}

func TestLookup(t *testing.T) {
	table := NewTable([]string{"en"}, map[string]map[string]string{"en": {"hi": "Hello"}})

	s, err := table.Lookup("en", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello", s)

	_, err = table.Lookup("en", "bye")
	assert.True(t, errors.Is(err, ErrMissingString))
}

func TestLang(t *testing.T) {
	assert.Equal(t, "en-US", Lang("en-us"))
	assert.Equal(t, "not a tag", Lang("not a tag"))
}

func TestExists(t *testing.T) {
	path := writeFile(t, "strings.toml", "")
	assert.True(t, Exists(path))
	assert.False(t, Exists(filepath.Dir(path)))
	assert.False(t, Exists(path+".missing"))
}
