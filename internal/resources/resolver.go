package resources

import (
	"strings"
)

const fingerprintParam = "fingerprint"

// URLOptions tunes URL derivation.
type URLOptions struct {
	// IncludeDomain prefixes root-relative URLs with the site base URL.
	IncludeDomain bool
	// Relative rewrites root-relative URLs relative to the current route.
	Relative bool
}

// Resolver maps resources to URLs for one page.
type Resolver struct {
	BaseURL string
	// Route is the site-relative route of the page being rendered.
	Route string
}

// Href returns the raw href of a resource. Load options expose their target
// unresolved, so asset targets are returned without a fingerprint.
func (r Resolver) Href(res Resource) (string, bool) {
	var href string
	switch res.kind {
	case KindAsset:
		href = fingerprinted(res.asset)
	case KindURL:
		href = res.url
	case KindLoad:
		if res.target == nil {
			return "", false
		}
		switch res.target.kind {
		case KindAsset:
			href = res.target.asset.Path
		case KindURL:
			href = res.target.url
		default:
			return "", false
		}
	default:
		return "", false
	}
	href = strings.TrimSpace(href)
	return href, href != ""
}

// URL resolves the canonical URL of a resource, applying fingerprints to
// assets and the requested rewrites.
func (r Resolver) URL(res Resource, opts URLOptions) (string, bool) {
	var raw string
	switch res.kind {
	case KindAsset:
		raw = fingerprinted(res.asset)
	case KindURL:
		raw = res.url
	case KindLoad:
		if res.target == nil || res.target.kind == KindLoad {
			return "", false
		}
		return r.URL(*res.target, opts)
	default:
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !isRootRelative(raw) {
		return raw, true
	}
	if opts.IncludeDomain {
		if base := strings.TrimRight(strings.TrimSpace(r.BaseURL), "/"); base != "" {
			return base + raw, true
		}
	}
	if opts.Relative {
		return relativeTo(r.Route, raw), true
	}
	return raw, true
}

// AbsoluteURL prefixes a root-relative path with the base URL.
func (r Resolver) AbsoluteURL(path string) string {
	url, _ := r.URL(FromURL(path), URLOptions{IncludeDomain: true})
	return url
}

func fingerprinted(asset Asset) string {
	path := strings.TrimSpace(asset.Path)
	if path == "" || asset.NoFingerprint || asset.Fingerprint == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + fingerprintParam + "=" + asset.Fingerprint
}

func isRootRelative(url string) bool {
	return strings.HasPrefix(url, "/") && !strings.HasPrefix(url, "//")
}

// relativeTo rewrites target relative to the directory served at route.
// Routes are directories since pages are written as {route}/index.html.
func relativeTo(route, target string) string {
	depth := 0
	for _, segment := range strings.Split(strings.Trim(route, "/"), "/") {
		if segment != "" {
			depth++
		}
	}
	trimmed := strings.TrimPrefix(target, "/")
	if depth == 0 {
		if trimmed == "" {
			return "./"
		}
		return trimmed
	}
	return strings.Repeat("../", depth) + trimmed
}
