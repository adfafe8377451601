// Package highlight wraps chroma for the two syntax-highlighting helpers
// templates can call: a style sheet for a named theme and highlighted code.
package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnknownStyle indicates the requested theme is not registered with chroma.
var ErrUnknownStyle = errors.New("unknown highlight style")

func lookupStyle(name string) (*chroma.Style, error) {
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return style, nil
}

func formatter() *chromahtml.Formatter {
	return chromahtml.New(chromahtml.WithClasses(true))
}

// CSS returns the class-based style sheet for the named theme.
func CSS(styleName string) (string, error) {
	style, err := lookupStyle(styleName)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := formatter().WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("write %s css: %w", styleName, err)
	}
	return buf.String(), nil
}

// Code renders source as class-annotated HTML. Unknown languages fall back
// to plain text.
func Code(source, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", language, err)
	}

	var buf bytes.Buffer
	if err := formatter().Format(&buf, styles.Fallback, iterator); err != nil {
		return "", fmt.Errorf("format %s: %w", language, err)
	}
	return buf.String(), nil
}
