// Package locale loads the localization table: an ordered set of locale
// identifiers, each mapping string keys to localized strings.
//
// Declaration order is preserved from the source file. The first declared
// locale is the primary locale; it owns the canonical asset tree.
package locale

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/language"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
)

// DefaultPath is the conventional localization file name, resolved from the
// working directory.
const DefaultPath = "strings.toml"

var (
	// ErrLocalizationNotFound indicates the localization file does not exist.
	ErrLocalizationNotFound = errors.New("localization file not found")

	// ErrLocalizationMalformed indicates the file could not be parsed into locale tables.
	ErrLocalizationMalformed = errors.New("localization file is malformed")

	// ErrMissingString indicates a template asked for a key its locale does not define.
	ErrMissingString = errors.New("missing localized string")
)

// Table is the read-only locale -> key -> string mapping for one build.
type Table struct {
	locales []string
	strings map[string]map[string]string
}

// NewTable builds a Table from an explicit order and mapping. Locales listed
// in order but absent from values get an empty string map.
func NewTable(order []string, values map[string]map[string]string) *Table {
	t := &Table{
		locales: slices.Clone(order),
		strings: make(map[string]map[string]string, len(order)),
	}
	for _, l := range order {
		m := values[l]
		if m == nil {
			m = map[string]string{}
		}
		t.strings[l] = m
	}
	return t
}

// Load reads and parses the localization file at path. YAML is used for
// .yaml/.yml files and TOML for everything else.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.WrapError(fmt.Errorf("%w: %w", ErrLocalizationNotFound, err), ferrors.CategoryConfig, "localization file does not exist").
				Fatal().
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read localization file").
			Fatal().
			WithContext("path", path).
			Build()
	}

	var table *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		table, err = parseYAML(data)
	default:
		table, err = parseTOML(data)
	}
	if err != nil {
		return nil, ferrors.WrapError(fmt.Errorf("%w: %w", ErrLocalizationMalformed, err), ferrors.CategoryConfig, "invalid localization file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return table, nil
}

// Exists reports whether a regular file is present at path.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// Locales returns the locale identifiers in declaration order.
func (t *Table) Locales() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.locales)
}

// Len returns the number of declared locales.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.locales)
}

// Empty reports whether no locale is declared.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Primary returns the first declared locale.
func (t *Table) Primary() (string, bool) {
	if t.Empty() {
		return "", false
	}
	return t.locales[0], true
}

// Strings returns the key -> string map for locale, nil if undeclared.
// The map is shared; callers must not modify it.
func (t *Table) Strings(locale string) map[string]string {
	if t == nil {
		return nil
	}
	return t.strings[locale]
}

// Lookup returns the string for key in locale.
func (t *Table) Lookup(locale, key string) (string, error) {
	s, ok := t.Strings(locale)[key]
	if !ok {
		return "", fmt.Errorf("%w: %q in locale %q", ErrMissingString, key, locale)
	}
	return s, nil
}

// Tag parses locale as a BCP 47 language tag.
func Tag(locale string) (language.Tag, error) {
	return language.Parse(locale)
}

// Lang returns the canonical BCP 47 form of locale, or locale unchanged when
// it is not a recognised tag.
func Lang(locale string) string {
	tag, err := Tag(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}
