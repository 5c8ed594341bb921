package generator

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".pagebuilder-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records the last successful build to support incremental runs.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	InputsHash  string                   `json:"inputs_hash,omitempty"`
	Pages       map[string]manifestPage  `json:"pages"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestPage struct {
	PageID     string    `json:"page_id"`
	Path       string    `json:"path"`
	Locale     string    `json:"locale"`
	Route      string    `json:"route"`
	Output     string    `json:"output"`
	Hash       string    `json:"hash"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
		Assets:  map[string]manifestAsset{},
	}
}

// parseManifest accepts the ordered form written by marshal.
func parseManifest(data []byte) (*buildManifest, error) {
	manifest := newBuildManifest()
	if len(data) == 0 {
		return manifest, nil
	}
	var stored orderedManifest
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if stored.Version != 0 {
		manifest.Version = stored.Version
	}
	manifest.GeneratedAt = stored.GeneratedAt
	manifest.InputsHash = stored.InputsHash
	for _, entry := range stored.Pages {
		manifest.setPage(entry)
	}
	for _, entry := range stored.Assets {
		manifest.setAsset(entry)
	}
	return manifest, nil
}

type orderedManifest struct {
	Version     int             `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	InputsHash  string          `json:"inputs_hash,omitempty"`
	Pages       []manifestPage  `json:"pages"`
	Assets      []manifestAsset `json:"assets"`
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	ordered := orderedManifest{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		InputsHash:  m.InputsHash,
		Pages:       make([]manifestPage, 0, len(m.Pages)),
		Assets:      make([]manifestAsset, 0, len(m.Assets)),
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	for _, entry := range m.Pages {
		ordered.Pages = append(ordered.Pages, entry)
	}
	sort.Slice(ordered.Pages, func(i, j int) bool {
		if ordered.Pages[i].Path == ordered.Pages[j].Path {
			return ordered.Pages[i].Locale < ordered.Pages[j].Locale
		}
		return ordered.Pages[i].Path < ordered.Pages[j].Path
	})
	for _, entry := range m.Assets {
		ordered.Assets = append(ordered.Assets, entry)
	}
	sort.Slice(ordered.Assets, func(i, j int) bool {
		return ordered.Assets[i].Source < ordered.Assets[j].Source
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func pageKey(pagePath, locale string) string {
	return strings.TrimSpace(pagePath) + "::" + strings.ToLower(strings.TrimSpace(locale))
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[pageKey(entry.Path, entry.Locale)] = entry
}

func (m *buildManifest) shouldSkipPage(pagePath, locale, hash, output string) bool {
	if m == nil {
		return false
	}
	entry, ok := m.Pages[pageKey(pagePath, locale)]
	if !ok {
		return false
	}
	return entry.Hash == hash && entry.Output == output
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	m.Assets[strings.TrimSpace(entry.Source)] = entry
}

func (m *buildManifest) shouldSkipAsset(source, checksum, output string) bool {
	if m == nil {
		return false
	}
	entry, ok := m.Assets[strings.TrimSpace(source)]
	if !ok {
		return false
	}
	return entry.Checksum == checksum && entry.Output == output
}

func manifestPath(baseDir string) string {
	return joinOutputPath(baseDir, manifestFileName)
}

func (m *buildManifest) prunePages(keys map[string]struct{}) {
	for key := range m.Pages {
		if _, ok := keys[key]; !ok {
			delete(m.Pages, key)
		}
	}
}

func (m *buildManifest) pruneAssets(keys map[string]struct{}) {
	for key := range m.Assets {
		if _, ok := keys[key]; !ok {
			delete(m.Assets, key)
		}
	}
}

func joinOutputPath(base string, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	if trimmed := strings.TrimSpace(base); trimmed != "" {
		segments = append(segments, trimmed)
	}
	for _, part := range parts {
		if trimmed := strings.Trim(strings.TrimSpace(part), "/"); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) == 0 {
		return ""
	}
	return path.Join(segments...)
}

func outputDir(pathValue string) string {
	dir := path.Dir(strings.TrimSpace(pathValue))
	if dir == "." {
		return ""
	}
	return dir
}
