// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the extraction, checking and
// reporting stages.
package types

import "strconv"

// Link is an outbound URL discovered in the corpus together with the
// document that referenced it. Two links with the same URL are the same
// link for checking purposes.
type Link struct {
	// URL is the outbound target (e.g. "https://www.amazon.com/dp/B000123").
	URL string `json:"url" yaml:"url"`

	// Source is the identifier of the document that referenced the link
	// (e.g. "_posts/2024-01-01-best-soap.md").
	Source string `json:"source" yaml:"source"`

	// ReferencedProduct is the product slug when the link was reached
	// indirectly through an internal /products/<slug> reference.
	ReferencedProduct string `json:"referenced_product,omitempty" yaml:"referenced_product,omitempty"`
}

// CandidateSet is an ordered sequence of links that are unique by URL.
// The first link added for a URL keeps its provenance.
type CandidateSet struct {
	links []Link
	seen  map[string]struct{}
}

// NewCandidateSet returns an empty candidate set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{seen: make(map[string]struct{})}
}

// Add appends l unless a link with the same URL is already present.
// It reports whether l was added.
func (c *CandidateSet) Add(l Link) bool {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[l.URL]; ok {
		return false
	}
	c.seen[l.URL] = struct{}{}
	c.links = append(c.links, l)
	return true
}

// Len returns the number of unique links.
func (c *CandidateSet) Len() int {
	return len(c.links)
}

// Links returns a copy of the links in insertion order.
func (c *CandidateSet) Links() []Link {
	out := make([]Link, len(c.links))
	copy(out, c.links)
	return out
}

// ConnectionErrorBucket is the status group used for outcomes without an
// HTTP status.
const ConnectionErrorBucket = "connection error"

// CheckOutcome is the terminal result of checking one link.
// Status is nil when the check ended in a transport failure; Error is then
// always set.
type CheckOutcome struct {
	URL               string `json:"url" yaml:"url"`
	Source            string `json:"source" yaml:"source"`
	ReferencedProduct string `json:"referenced_product,omitempty" yaml:"referenced_product,omitempty"`
	Status            *int   `json:"status" yaml:"status"`
	Error             string `json:"error" yaml:"error"`

	// Attempts is the number of probes issued, counting retries.
	Attempts int `json:"-" yaml:"-"`

	// Redirects is the number of redirect hops followed on the final attempt.
	Redirects int `json:"-" yaml:"-"`
}

// IsIssue reports whether the outcome belongs in the issue list.
func (o CheckOutcome) IsIssue() bool {
	return o.Status == nil || *o.Status >= 400
}

// StatusText returns the status code as text, or "Error" when absent.
func (o CheckOutcome) StatusText() string {
	if o.Status == nil {
		return "Error"
	}
	return strconv.Itoa(*o.Status)
}

// Bucket returns the group name used by grouped summaries.
func (o CheckOutcome) Bucket() string {
	if o.Status == nil {
		return ConnectionErrorBucket
	}
	return strconv.Itoa(*o.Status)
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
