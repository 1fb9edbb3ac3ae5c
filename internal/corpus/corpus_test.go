// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/linkaudit/pkg/types"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewDir_MissingRoot(t *testing.T) {
	_, err := NewDir(types.CorpusConfig{Root: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening corpus root")
}

func TestNewDir_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "file.md", "x")
	_, err := NewDir(types.CorpusConfig{Root: filepath.Join(root, "file.md")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDir_ListsSortedMarkdownOnly(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "_products/zinc-soap.md", "z")
	writeDoc(t, root, "_products/bamboo-brush.md", "b")
	writeDoc(t, root, "_products/notes.txt", "ignored")
	writeDoc(t, root, "_products/.draft.md", "ignored")
	writeDoc(t, root, "_posts/2024-01-01-intro.md", "p")

	d, err := NewDir(types.CorpusConfig{Root: root})
	require.NoError(t, err)

	products, err := d.Products()
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "bamboo-brush", products[0].ID)
	assert.Equal(t, "_products/bamboo-brush.md", products[0].Path)
	assert.Equal(t, "zinc-soap", products[1].ID)

	posts, err := d.Posts()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p", string(posts[0].Body))
}

func TestDir_MissingSubdirIsEmpty(t *testing.T) {
	d, err := NewDir(types.CorpusConfig{Root: t.TempDir()})
	require.NoError(t, err)

	posts, err := d.Posts()
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestDir_CustomDirs(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "catalog/item.md", "i")

	d, err := NewDir(types.CorpusConfig{Root: root, ProductsDir: "catalog"})
	require.NoError(t, err)

	doc, err := d.Product("item")
	require.NoError(t, err)
	assert.Equal(t, "catalog/item.md", doc.Path)
}

func TestDir_Product(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "_products/soap.md", "body")
	d, err := NewDir(types.CorpusConfig{Root: root})
	require.NoError(t, err)

	doc, err := d.Product("soap")
	require.NoError(t, err)
	assert.Equal(t, "soap", doc.ID)
	assert.Equal(t, "body", string(doc.Body))

	for _, id := range []string{"missing", "", "../etc/passwd", ".."} {
		_, err = d.Product(id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestDir_UnreadableDocumentSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("file permissions are not enforced")
	}
	root := t.TempDir()
	writeDoc(t, root, "_posts/a.md", "a")
	writeDoc(t, root, "_posts/b.md", "b")
	require.NoError(t, os.Chmod(filepath.Join(root, "_posts/b.md"), 0o000))

	d, err := NewDir(types.CorpusConfig{Root: root})
	require.NoError(t, err)
	var skipped []string
	d.OnSkip = func(path string, _ error) { skipped = append(skipped, path) }

	posts, err := d.Posts()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, []string{"_posts/b.md"}, skipped)
}

func TestMemory(t *testing.T) {
	m := Memory{
		ProductDocs: map[string]string{"b": "B", "a": "A"},
		PostDocs:    map[string]string{"p": "P"},
	}
	products, err := m.Products()
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "_products/a.md", products[0].Path)

	_, err = m.Product("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}
