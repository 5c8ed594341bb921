// Package resources resolves stylesheet and script declarations to canonical
// URLs and guarantees each URL is emitted at most once per document.
package resources

import "strings"

// Kind tags the variant held by a Resource.
type Kind int

const (
	KindNone Kind = iota
	KindAsset
	KindURL
	KindLoad
)

func (k Kind) String() string {
	switch k {
	case KindAsset:
		return "asset"
	case KindURL:
		return "url"
	case KindLoad:
		return "load"
	default:
		return "none"
	}
}

// Asset is a file known to the asset pipeline.
type Asset struct {
	Name          string
	Path          string
	Fingerprint   string
	NoFingerprint bool
}

// LoadOptions controls how a script or stylesheet is fetched.
type LoadOptions struct {
	Async   bool
	Defer   bool
	Preload bool
}

// Resource is a tagged variant: an asset, a plain URL, or load options
// wrapping one of the two.
type Resource struct {
	kind   Kind
	asset  Asset
	url    string
	target *Resource
	opts   LoadOptions
}

// FromAsset wraps an asset reference.
func FromAsset(asset Asset) Resource {
	return Resource{kind: KindAsset, asset: asset}
}

// FromURL wraps a plain URL string.
func FromURL(url string) Resource {
	return Resource{kind: KindURL, url: strings.TrimSpace(url)}
}

// Load attaches load options to an asset or URL resource. Nested load
// options are flattened onto the innermost target.
func Load(target Resource, opts LoadOptions) Resource {
	if target.kind == KindLoad && target.target != nil {
		return Load(*target.target, opts)
	}
	inner := target
	return Resource{kind: KindLoad, target: &inner, opts: opts}
}

// Kind reports the variant tag.
func (r Resource) Kind() Kind { return r.kind }

// Asset returns the asset held by the resource or by its load target.
func (r Resource) Asset() (Asset, bool) {
	switch r.kind {
	case KindAsset:
		return r.asset, true
	case KindLoad:
		if r.target != nil && r.target.kind == KindAsset {
			return r.target.asset, true
		}
	}
	return Asset{}, false
}

// Options returns the load options; zero for non-load variants.
func (r Resource) Options() LoadOptions {
	if r.kind == KindLoad {
		return r.opts
	}
	return LoadOptions{}
}

// String names the resource for diagnostics.
func (r Resource) String() string {
	switch r.kind {
	case KindAsset:
		if r.asset.Name != "" {
			return r.asset.Name
		}
		return r.asset.Path
	case KindURL:
		return r.url
	case KindLoad:
		if r.target != nil {
			return r.target.String()
		}
		return "load(<empty>)"
	default:
		return "<none>"
	}
}

// Spec is the declarative form of a resource used in configuration files.
// Asset names are looked up in the asset catalog; Href is used verbatim.
type Spec struct {
	Asset   string `json:"asset,omitempty" yaml:"asset,omitempty"`
	Href    string `json:"href,omitempty" yaml:"href,omitempty"`
	Async   bool   `json:"async,omitempty" yaml:"async,omitempty"`
	Defer   bool   `json:"defer,omitempty" yaml:"defer,omitempty"`
	Preload bool   `json:"preload,omitempty" yaml:"preload,omitempty"`
}

// AssetLookup finds assets by their public URL path.
type AssetLookup interface {
	Lookup(urlPath string) (Asset, bool)
}

// FromSpec converts a configured resource into its variant form. An asset
// the catalog does not know keeps its name but no path, so emitting it fails.
// Without a catalog asset names are used as paths.
func FromSpec(spec Spec, lookup AssetLookup) Resource {
	var base Resource
	switch {
	case strings.TrimSpace(spec.Asset) != "":
		name := strings.TrimSpace(spec.Asset)
		if lookup == nil {
			base = FromAsset(Asset{Name: name, Path: name, NoFingerprint: true})
			break
		}
		asset, ok := lookup.Lookup(name)
		if !ok {
			asset = Asset{Name: name}
		}
		base = FromAsset(asset)
	case strings.TrimSpace(spec.Href) != "":
		base = FromURL(spec.Href)
	default:
		return Resource{}
	}
	if spec.Async || spec.Defer || spec.Preload {
		return Load(base, LoadOptions{Async: spec.Async, Defer: spec.Defer, Preload: spec.Preload})
	}
	return base
}

// AssetOrPath resolves name through the catalog, falling back to name itself
// without a fingerprint. Used for optional values such as icons where a
// missing file is not an error.
func AssetOrPath(name string, lookup AssetLookup) Resource {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resource{}
	}
	if lookup != nil {
		if asset, ok := lookup.Lookup(name); ok {
			return FromAsset(asset)
		}
	}
	return FromAsset(Asset{Name: name, Path: name, NoFingerprint: true})
}
