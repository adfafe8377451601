package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name string
		html string
		want Metadata
	}{
		{
			name: "title and description",
			html: `<html><head><title>Cats</title><meta name="description" content="All about cats"></head></html>`,
			want: Metadata{Title: "Cats", Description: "All about cats", HasDescription: true},
		},
		{
			name: "no description",
			html: `<html><head><title>Dogs</title></head></html>`,
			want: Metadata{Title: "Dogs"},
		},
		{
			name: "meta without content",
			html: `<html><head><title>T</title><meta name="description"></head></html>`,
			want: Metadata{Title: "T"},
		},
		{
			name: "empty description is present",
			html: `<head><meta name="description" content=""></head>`,
			want: Metadata{HasDescription: true},
		},
		{
			name: "first title and meta win",
			html: `<head><title>One</title><title>Two</title><meta name="description" content="a"><meta name="description" content="b"></head>`,
			want: Metadata{Title: "One", Description: "a", HasDescription: true},
		},
		{
			name: "title fragment is placed in head",
			html: `<title> Spaced
			out </title><p>body</p>`,
			want: Metadata{Title: "Spaced out"},
		},
		{
			name: "not html at all",
			html: `plain text`,
			want: Metadata{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata(strings.NewReader(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
