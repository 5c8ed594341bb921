// Package assets exposes the public asset tree to the renderer: existence
// checks, fingerprints and file listings for the generator.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-pagebuilder/internal/resources"
)

const fingerprintLength = 16

// Catalog maps public URL paths onto files in an fs.FS. Fingerprints are
// computed on first lookup and cached for the catalog's lifetime.
type Catalog struct {
	fs     fs.FS
	prefix string

	mu     sync.RWMutex
	hashes map[string]string
}

var _ resources.AssetLookup = (*Catalog)(nil)

// NewCatalog serves files in fsys under the URL prefix (default "/").
func NewCatalog(fsys fs.FS, urlPrefix string) *Catalog {
	prefix := "/" + strings.Trim(strings.TrimSpace(urlPrefix), "/")
	if prefix != "/" {
		prefix += "/"
	}
	return &Catalog{fs: fsys, prefix: prefix, hashes: map[string]string{}}
}

// Lookup returns the asset served at urlPath. The query string is ignored
// when finding the file but kept in the returned path.
func (c *Catalog) Lookup(urlPath string) (resources.Asset, bool) {
	if c == nil || c.fs == nil {
		return resources.Asset{}, false
	}
	urlPath = strings.TrimSpace(urlPath)
	clean, _, _ := strings.Cut(urlPath, "?")
	name, ok := c.fsPath(clean)
	if !ok {
		return resources.Asset{}, false
	}
	fingerprint, err := c.fingerprint(name)
	if err != nil {
		return resources.Asset{}, false
	}
	return resources.Asset{
		Name:        name,
		Path:        urlPath,
		Fingerprint: fingerprint,
	}, true
}

// Exists reports whether a file is served at urlPath.
func (c *Catalog) Exists(urlPath string) bool {
	_, ok := c.Lookup(urlPath)
	return ok
}

// Files lists every file matching pattern (doublestar syntax, relative to
// the catalog root), sorted. An empty pattern lists everything.
func (c *Catalog) Files(pattern string) ([]string, error) {
	if c == nil || c.fs == nil {
		return nil, nil
	}
	if strings.TrimSpace(pattern) == "" {
		pattern = "**"
	}
	matches, err := doublestar.Glob(c.fs, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("assets: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// URLFor maps a catalog-relative file name to its public URL path.
func (c *Catalog) URLFor(name string) string {
	return c.prefix + strings.TrimPrefix(name, "/")
}

// FS exposes the underlying filesystem.
func (c *Catalog) FS() fs.FS {
	return c.fs
}

// Reset drops cached fingerprints, used after files change on disk.
func (c *Catalog) Reset() {
	c.mu.Lock()
	c.hashes = map[string]string{}
	c.mu.Unlock()
}

func (c *Catalog) fsPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, c.prefix) {
		return "", false
	}
	name := path.Clean(strings.TrimPrefix(urlPath, c.prefix))
	if name == "." || !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

func (c *Catalog) fingerprint(name string) (string, error) {
	c.mu.RLock()
	cached, ok := c.hashes[name]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := fs.ReadFile(c.fs, name)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	value := hex.EncodeToString(sum[:])[:fingerprintLength]

	c.mu.Lock()
	c.hashes[name] = value
	c.mu.Unlock()
	return value, nil
}
