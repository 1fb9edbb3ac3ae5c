// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontmatter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProduct = `---
title: Bamboo Toothbrush
category: bathroom
amazon_link: https://www.amazon.com/dp/B07XYZ1234?tag=goodclean-20
price: 12.99
---
A compostable toothbrush.
`

func TestParse_Product(t *testing.T) {
	p, err := Parse("_products/bamboo.md", []byte(sampleProduct))
	require.NoError(t, err)

	assert.Equal(t, "Bamboo Toothbrush", p.Title)
	assert.Equal(t, "bathroom", p.Category)
	assert.Equal(t, "https://www.amazon.com/dp/B07XYZ1234?tag=goodclean-20", p.AmazonLink)
	assert.Equal(t, 12.99, p.Extra["price"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		parse   bool
	}{
		{"no front matter", "# Just a heading\n", ErrNoFrontMatter, false},
		{"empty document", "", ErrNoFrontMatter, false},
		{"unterminated", "---\ntitle: x\n", ErrUnterminated, false},
		{"only delimiter", "---", ErrUnterminated, false},
		{"invalid yaml", "---\ntitle: [unclosed\n---\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("doc.md", []byte(tt.body))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.parse {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "doc.md", pe.Doc)
				assert.Contains(t, err.Error(), "parsing front matter of doc.md")
			}
		})
	}
}

func TestSplit(t *testing.T) {
	block, content, err := Split([]byte("---\r\ntitle: x\r\n---\r\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "title: x\r\n", string(block))
	assert.Equal(t, "body", string(content))

	block, content, err = Split([]byte("\xef\xbb\xbf---\n---\nrest"))
	require.NoError(t, err)
	assert.Empty(t, block)
	assert.Equal(t, "rest", string(content))
}

func TestParse_EmptyBlock(t *testing.T) {
	p, err := Parse("doc.md", []byte("---\n---\n"))
	require.NoError(t, err)
	assert.Empty(t, p.AmazonLink)
}

func TestOutboundLink(t *testing.T) {
	amazon := regexp.MustCompile(`^https://www\.amazon\.com/`)
	tests := []struct {
		name string
		link string
		want string
		ok   bool
	}{
		{"matching", "https://www.amazon.com/dp/B1", "https://www.amazon.com/dp/B1", true},
		{"trimmed", "  https://www.amazon.com/dp/B1 ", "https://www.amazon.com/dp/B1", true},
		{"other domain", "https://www.ebay.com/itm/1", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Product{AmazonLink: tt.link}.OutboundLink(amazon)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	got, ok := Product{AmazonLink: "https://example.com"}.OutboundLink(nil)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", got)
}
