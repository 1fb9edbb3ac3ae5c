// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract discovers outbound links in a content corpus and returns
// them as a deduplicated candidate set.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/linkaudit/internal/corpus"
	"github.com/pdiddy/linkaudit/internal/frontmatter"
	"github.com/pdiddy/linkaudit/pkg/types"
)

// Default patterns.
const (
	DefaultOutboundPattern   = `^https://www\.amazon\.com/`
	DefaultProductPathPrefix = "/products/"
)

// inlineLink matches [text](target) and [text](target "title").
var inlineLink = regexp.MustCompile(`\[[^\]\n]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)

// DanglingReason explains why an internal product reference produced no link.
type DanglingReason string

const (
	ReasonMissingProduct DanglingReason = "product document not found"
	ReasonNoOutboundLink DanglingReason = "product declares no outbound link"
	ReasonUnparsable     DanglingReason = "product front matter could not be parsed"
	ReasonUnreadable     DanglingReason = "product document could not be read"
)

// DanglingRef is an internal product reference that did not resolve to an
// outbound link.
type DanglingRef struct {
	Source  string
	Product string
	Reason  DanglingReason
}

// Options configures an extraction.
type Options struct {
	// OutboundPattern selects outbound links. Nil uses DefaultOutboundPattern.
	OutboundPattern *regexp.Regexp

	// ProductPathPrefix marks internal product references
	// (default DefaultProductPathPrefix).
	ProductPathPrefix string

	Logger *zap.Logger
}

// Result is the outcome of an extraction.
type Result struct {
	Candidates *types.CandidateSet

	// Found counts every link occurrence before deduplication.
	Found int

	Dangling []DanglingRef
	Skipped  []string
}

// Duplicates returns the number of link occurrences dropped by deduplication.
func (r Result) Duplicates() int {
	return r.Found - r.Candidates.Len()
}

// OptionsFromConfig builds extraction options from the corpus settings.
func OptionsFromConfig(cfg types.CorpusConfig, logger *zap.Logger) (Options, error) {
	opts := Options{ProductPathPrefix: cfg.ProductPathPrefix, Logger: logger}
	if cfg.OutboundPattern != "" {
		re, err := regexp.Compile(cfg.OutboundPattern)
		if err != nil {
			return Options{}, fmt.Errorf("invalid outbound pattern %q: %w", cfg.OutboundPattern, err)
		}
		opts.OutboundPattern = re
	}
	return opts, nil
}

type productLink struct {
	url        string
	ok         bool
	unreadable bool
	err        error
}

// Extract scans products first, then posts, each in identifier order, and
// returns the unique outbound links. Unparsable documents are skipped with a
// warning. Only a failure to list the corpus is returned as an error.
func Extract(c corpus.Corpus, opts Options) (Result, error) {
	if opts.OutboundPattern == nil {
		opts.OutboundPattern = regexp.MustCompile(DefaultOutboundPattern)
	}
	if opts.ProductPathPrefix == "" {
		opts.ProductPathPrefix = DefaultProductPathPrefix
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result := Result{Candidates: types.NewCandidateSet()}
	add := func(l types.Link) {
		result.Found++
		if !result.Candidates.Add(l) {
			logger.Debug("duplicate link dropped", zap.String("url", l.URL), zap.String("source", l.Source))
		}
	}

	products, err := c.Products()
	if err != nil {
		return Result{}, fmt.Errorf("listing products: %w", err)
	}

	declared := make(map[string]productLink, len(products))
	for _, doc := range products {
		p, err := frontmatter.Parse(doc.Path, doc.Body)
		if err != nil {
			logger.Warn("skipping product document", zap.String("path", doc.Path), zap.Error(err))
			result.Skipped = append(result.Skipped, doc.Path)
			declared[doc.ID] = productLink{err: err}
			continue
		}
		link, ok := p.OutboundLink(opts.OutboundPattern)
		declared[doc.ID] = productLink{url: link, ok: ok}
		if ok {
			add(types.Link{URL: link, Source: doc.Path})
		}
	}

	posts, err := c.Posts()
	if err != nil {
		return Result{}, fmt.Errorf("listing posts: %w", err)
	}

	for _, doc := range posts {
		for _, target := range InlineTargets(doc.Body) {
			if opts.OutboundPattern.MatchString(target) {
				add(types.Link{URL: target, Source: doc.Path})
				continue
			}

			slug, ok := ProductSlug(target, opts.ProductPathPrefix)
			if !ok {
				continue
			}
			pl, known := declared[slug]
			if !known {
				pl = lookupProduct(c, slug, opts.OutboundPattern)
				declared[slug] = pl
			}

			switch {
			case pl.ok:
				add(types.Link{URL: pl.url, Source: doc.Path, ReferencedProduct: slug})
				continue
			case errors.Is(pl.err, corpus.ErrNotFound):
				result.Dangling = append(result.Dangling, DanglingRef{Source: doc.Path, Product: slug, Reason: ReasonMissingProduct})
			case pl.unreadable:
				result.Dangling = append(result.Dangling, DanglingRef{Source: doc.Path, Product: slug, Reason: ReasonUnreadable})
			case pl.err != nil:
				result.Dangling = append(result.Dangling, DanglingRef{Source: doc.Path, Product: slug, Reason: ReasonUnparsable})
			default:
				result.Dangling = append(result.Dangling, DanglingRef{Source: doc.Path, Product: slug, Reason: ReasonNoOutboundLink})
			}
			last := result.Dangling[len(result.Dangling)-1]
			logger.Warn("product reference has no outbound link",
				zap.String("source", last.Source),
				zap.String("product", last.Product),
				zap.String("reason", string(last.Reason)))
		}
	}

	return result, nil
}

func lookupProduct(c corpus.Corpus, slug string, pattern *regexp.Regexp) productLink {
	doc, err := c.Product(slug)
	if err != nil {
		return productLink{err: err, unreadable: !errors.Is(err, corpus.ErrNotFound)}
	}
	p, err := frontmatter.Parse(doc.Path, doc.Body)
	if err != nil {
		return productLink{err: err}
	}
	link, ok := p.OutboundLink(pattern)
	return productLink{url: link, ok: ok}
}

// InlineTargets returns the targets of all inline markdown links in body,
// in document order. Links inside fenced code blocks are ignored.
func InlineTargets(body []byte) []string {
	var targets []string
	for _, line := range proseLines(string(body)) {
		for _, m := range inlineLink.FindAllStringSubmatch(line, -1) {
			targets = append(targets, strings.TrimSpace(m[1]))
		}
	}
	return targets
}

// proseLines drops fenced code blocks.
func proseLines(body string) []string {
	var (
		out   []string
		fence string
	)
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}
		out = append(out, line)
	}
	return out
}

// ProductSlug extracts the product identifier from an internal link such as
// "/products/bamboo-toothbrush/" or "/products/bamboo-toothbrush.html#buy".
func ProductSlug(target, prefix string) (string, bool) {
	if !strings.HasPrefix(target, prefix) {
		return "", false
	}
	slug := strings.TrimPrefix(target, prefix)
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	slug = strings.TrimSuffix(slug, "/")
	slug = strings.TrimSuffix(slug, ".html")
	if slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}
