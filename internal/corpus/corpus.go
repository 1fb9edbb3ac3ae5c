// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus provides read-only access to the product and post documents
// of a site.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/linkaudit/pkg/types"
)

const (
	defaultProductsDir = "_products"
	defaultPostsDir    = "_posts"
	docExt             = ".md"
)

// ErrNotFound is returned by Product when no document has the identifier.
var ErrNotFound = errors.New("document not found")

// Document is one text blob of the corpus.
type Document struct {
	// ID is the file name without extension (e.g. "bamboo-toothbrush").
	ID string

	// Path is the document location relative to the corpus root
	// (e.g. "_products/bamboo-toothbrush.md"). It is used as provenance.
	Path string

	Body []byte
}

// Corpus is the read API the extractor needs.
type Corpus interface {
	Products() ([]Document, error)
	Posts() ([]Document, error)
	Product(id string) (Document, error)
}

// Dir is a Corpus backed by a site directory.
type Dir struct {
	root        string
	productsDir string
	postsDir    string

	// OnSkip is called for each document that cannot be read. A nil OnSkip
	// drops the document silently.
	OnSkip func(path string, err error)
}

// NewDir opens the corpus rooted at cfg.Root. It fails when the root is not
// an accessible directory. Missing document directories are treated as empty.
func NewDir(cfg types.CorpusConfig) (*Dir, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening corpus root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	d := &Dir{
		root:        root,
		productsDir: cfg.ProductsDir,
		postsDir:    cfg.PostsDir,
	}
	if d.productsDir == "" {
		d.productsDir = defaultProductsDir
	}
	if d.postsDir == "" {
		d.postsDir = defaultPostsDir
	}
	return d, nil
}

// Products returns all product documents sorted by ID.
func (d *Dir) Products() ([]Document, error) {
	return d.list(d.productsDir)
}

// Posts returns all post documents sorted by ID.
func (d *Dir) Posts() ([]Document, error) {
	return d.list(d.postsDir)
}

// Product reads the product document with the given identifier.
func (d *Dir) Product(id string) (Document, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return Document{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	rel := filepath.Join(d.productsDir, id+docExt)
	body, err := os.ReadFile(filepath.Join(d.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
		}
		return Document{}, fmt.Errorf("reading %s: %w", rel, err)
	}
	return Document{ID: id, Path: filepath.ToSlash(rel), Body: body}, nil
}

func (d *Dir) list(sub string) ([]Document, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, sub))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", sub, err)
	}

	var docs []Document
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != docExt || strings.HasPrefix(name, ".") {
			continue
		}
		rel := filepath.Join(sub, name)
		body, err := os.ReadFile(filepath.Join(d.root, rel))
		if err != nil {
			if d.OnSkip != nil {
				d.OnSkip(filepath.ToSlash(rel), err)
			}
			continue
		}
		docs = append(docs, Document{
			ID:   strings.TrimSuffix(name, docExt),
			Path: filepath.ToSlash(rel),
			Body: body,
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Memory is an in-memory Corpus keyed by document ID.
type Memory struct {
	ProductDocs map[string]string
	PostDocs    map[string]string
}

// Products returns the product documents sorted by ID.
func (m Memory) Products() ([]Document, error) {
	return memoryDocs(defaultProductsDir, m.ProductDocs), nil
}

// Posts returns the post documents sorted by ID.
func (m Memory) Posts() ([]Document, error) {
	return memoryDocs(defaultPostsDir, m.PostDocs), nil
}

// Product returns the product document with the given ID.
func (m Memory) Product(id string) (Document, error) {
	body, ok := m.ProductDocs[id]
	if !ok {
		return Document{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	return Document{ID: id, Path: defaultProductsDir + "/" + id + docExt, Body: []byte(body)}, nil
}

func memoryDocs(dir string, src map[string]string) []Document {
	docs := make([]Document, 0, len(src))
	for id, body := range src {
		docs = append(docs, Document{ID: id, Path: dir + "/" + id + docExt, Body: []byte(body)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}
