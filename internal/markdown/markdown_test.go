package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading id", "# Ramen Recipe", `<h1 id="ramen-recipe">Ramen Recipe</h1>`},
		{"emphasis", "some *soup*", "<p>some <em>soup</em></p>"},
		{"gfm strikethrough", "~~old~~", "<del>old</del>"},
		{"raw html kept", "<div class=\"x\">hi</div>", `<div class="x">hi</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.ToHTML(tt.in)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}
