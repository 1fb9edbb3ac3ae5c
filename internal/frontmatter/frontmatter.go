// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frontmatter parses the YAML header of a content document into a
// typed product record.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

const delimiter = "---"

var (
	// ErrNoFrontMatter means the document does not start with a "---" line.
	ErrNoFrontMatter = errors.New("no front matter")

	// ErrUnterminated means the opening "---" has no closing line.
	ErrUnterminated = errors.New("unterminated front matter")
)

// ParseError reports invalid YAML inside a front-matter block.
type ParseError struct {
	Doc string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing front matter of %s: %v", e.Doc, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Product is the front matter of a product document.
type Product struct {
	Title      string `yaml:"title"`
	Category   string `yaml:"category"`
	AmazonLink string `yaml:"amazon_link"`

	// Extra holds every other key.
	Extra map[string]any `yaml:",inline"`
}

// OutboundLink returns the declared amazon_link when it matches pattern.
// The second result is false when the product declares no matching link.
func (p Product) OutboundLink(pattern *regexp.Regexp) (string, bool) {
	link := strings.TrimSpace(p.AmazonLink)
	if link == "" || (pattern != nil && !pattern.MatchString(link)) {
		return "", false
	}
	return link, true
}

// Split separates the front-matter block from the document content.
// The returned block excludes the delimiter lines.
func Split(body []byte) (block, content []byte, err error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	first, rest, found := cutLine(body)
	if strings.TrimRight(string(first), " \t\r") != delimiter {
		return nil, body, ErrNoFrontMatter
	}
	if !found {
		return nil, nil, ErrUnterminated
	}

	offset := 0
	for offset <= len(rest) {
		line, tail, more := cutLine(rest[offset:])
		if strings.TrimRight(string(line), " \t\r") == delimiter {
			return rest[:offset], tail, nil
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return nil, nil, ErrUnterminated
}

// Parse decodes the front matter of the document named doc.
func Parse(doc string, body []byte) (Product, error) {
	block, _, err := Split(body)
	if err != nil {
		return Product{}, fmt.Errorf("%s: %w", doc, err)
	}

	var p Product
	if err := yaml.Unmarshal(block, &p); err != nil {
		return Product{}, &ParseError{Doc: doc, Err: err}
	}
	return p, nil
}

func cutLine(b []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}
