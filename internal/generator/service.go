package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"runtime"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/content"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/routes"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
	"github.com/goliatone/go-pagebuilder/pkg/storage"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrPageNotRoutable is returned by BuildPage for pages without a route.
	ErrPageNotRoutable   = errors.New("generator: page has no route")
	errStoreRequired     = errors.New("generator: content store is required")
	errDocumentsRequired = errors.New("generator: document builder is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildPage(ctx context.Context, pagePath, locale string) (*RenderedPage, error)
	BuildAssets(ctx context.Context) (*BuildResult, error)
	BuildRoutes(ctx context.Context) (*BuildResult, error)
	Clean(ctx context.Context) error
	routes.Registrar
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir     string
	CleanBuild    bool
	Incremental   bool
	CopyAssets    bool
	Workers       int
	DefaultLocale string
	Locales       []string
	RenderTimeout time.Duration
}

// ConfigFrom derives generator settings from the site configuration.
func ConfigFrom(cfg runtimeconfig.Config) Config {
	return Config{
		OutputDir:     cfg.Generator.OutputDir,
		CleanBuild:    cfg.Generator.CleanBuild,
		Incremental:   cfg.Generator.Incremental,
		CopyAssets:    cfg.Generator.CopyAssets,
		Workers:       cfg.Generator.Workers,
		DefaultLocale: cfg.Site.DefaultLocale,
		Locales:       cfg.SiteLocales(),
		RenderTimeout: cfg.Generator.RenderTimeout,
	}
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	Locales []string
	Paths   []string
	// Force renders every page even when the manifest says it is current.
	Force      bool
	DryRun     bool
	AssetsOnly bool
}

func (o BuildOptions) filtered() bool {
	return len(o.Locales) > 0 || len(o.Paths) > 0
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	RoutesBuilt   int
	Locales       []string
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// RenderedPage is one document produced by a build.
type RenderedPage struct {
	PageID   uuid.UUID
	Path     string
	Locale   string
	Route    string
	Output   string
	HTML     string
	Checksum string
	Hash     string
	Duration time.Duration
}

// RenderDiagnostic records the outcome of a single page.
type RenderDiagnostic struct {
	Path     string
	Locale   string
	Route    string
	Duration time.Duration
	Skipped  bool
	Reason   string
	Err      error
}

// DocumentBuilder renders complete documents. *document.Builder satisfies it.
type DocumentBuilder interface {
	Build(ctx context.Context, page *content.Page, renderCtx map[string]any) (string, error)
}

// AssetSource lists public files to copy. *assets.Catalog satisfies it.
type AssetSource interface {
	Files(pattern string) ([]string, error)
	FS() fs.FS
	URLFor(name string) string
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Store     content.Store
	Documents DocumentBuilder
	Storage   interfaces.StorageProvider
	Assets    AssetSource
	// Templates contribute to the inputs hash that invalidates incremental
	// builds when a template changes.
	Templates fs.FS
	Routes    []routes.Provider
	Metrics   Recorder
	Logger    interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Metrics == nil {
		deps.Metrics = NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &service{
		cfg:       cfg,
		deps:      deps,
		providers: slices.Clone(deps.Routes),
		now:       time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time

	mu        sync.RWMutex
	providers []routes.Provider
}

type disabledService struct{}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	skipped    bool
	err        error
}

// buildContext holds the pages selected for one run.
type buildContext struct {
	Pages       []*content.Page
	Locales     []string
	Siblings    map[string]string
	InputsHash  string
	GeneratedAt time.Time
}

// RegisterRoutes adds providers whose routes are written by every build.
func (s *service) RegisterRoutes(providers ...routes.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, provider := range providers {
		if provider != nil {
			s.providers = append(s.providers, provider)
		}
	}
	return nil
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.AssetsOnly {
		if s.deps.Store == nil {
			return nil, errStoreRequired
		}
		if s.deps.Documents == nil {
			return nil, errDocumentsRequired
		}
	}

	start := time.Now()
	logger := s.deps.Logger
	logger.Info("generator.build.start", "dry_run", opts.DryRun, "assets_only", opts.AssetsOnly)

	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Locales:     slices.Clone(buildCtx.Locales),
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(buildCtx.Pages)),
	}

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(buildCtx.Pages))
		errorsSlice []error
		pageKeys    = map[string]struct{}{}
		writer      = newArtifactWriter(s.deps.Storage)
	)

	manifest, manifestErr := s.loadManifest(ctx, writer)
	if manifestErr != nil {
		logger.Warn("generator.manifest.unreadable", "error", manifestErr)
		manifest = newBuildManifest()
	}

	if s.cfg.CleanBuild && !s.cfg.Incremental && !opts.DryRun && !opts.filtered() && !opts.AssetsOnly {
		if err := s.Clean(ctx); err != nil {
			return nil, err
		}
		manifest = newBuildManifest()
	}

	skipUnchanged := s.cfg.Incremental && !opts.Force
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		pageKeys[pageKey(outcome.diagnostic.Path, outcome.diagnostic.Locale)] = struct{}{}
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	if !opts.AssetsOnly {
		workerCount := s.effectiveWorkerCount(len(buildCtx.Locales))
		if workerCount <= 1 || len(buildCtx.Pages) <= 1 {
			for _, page := range buildCtx.Pages {
				if err := ctx.Err(); err != nil {
					collect(cancelledOutcome(page, err))
					return result, err
				}
				collect(s.renderPage(ctx, buildCtx, page, manifest, skipUnchanged))
			}
		} else if err := s.renderConcurrently(ctx, buildCtx, workerCount, manifest, skipUnchanged, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	sortRendered(rendered)
	sortDiagnostics(result.Diagnostics)
	s.deps.Metrics.IncPages(ResultBuilt, result.PagesBuilt)
	s.deps.Metrics.IncPages(ResultSkipped, result.PagesSkipped)
	s.deps.Metrics.IncPages(ResultFailed, len(errorsSlice))

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = time.Since(start)
		return s.finish(result, errorsSlice)
	}

	if err := s.persistPages(ctx, writer, rendered); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	if s.cfg.CopyAssets || opts.AssetsOnly {
		summary, err := s.copyAssets(ctx, writer, manifest, !opts.Force)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		result.AssetsBuilt += summary.Built
		result.AssetsSkipped += summary.Skipped
		if err == nil && !opts.filtered() {
			manifest.pruneAssets(summary.Keys)
		}
	}

	if !opts.AssetsOnly {
		written, err := s.writeRoutes(ctx, writer)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		result.RoutesBuilt = written
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		manifest.InputsHash = buildCtx.InputsHash
		for _, page := range rendered {
			manifest.setPage(manifestPage{
				PageID:     page.PageID.String(),
				Path:       page.Path,
				Locale:     page.Locale,
				Route:      page.Route,
				Output:     page.Output,
				Hash:       page.Hash,
				Checksum:   page.Checksum,
				RenderedAt: buildCtx.GeneratedAt,
			})
		}
		if !opts.filtered() && !opts.AssetsOnly {
			manifest.prunePages(pageKeys)
		}
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)
	s.deps.Metrics.ObserveBuildDuration(result.Duration)
	logger.Info("generator.build.completed",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"assets_built", result.AssetsBuilt,
		"routes_built", result.RoutesBuilt,
		"duration", result.Duration,
	)
	return s.finish(result, errorsSlice)
}

func (s *service) finish(result *BuildResult, errs []error) (*BuildResult, error) {
	if len(errs) == 0 {
		return result, nil
	}
	result.Errors = append(result.Errors, errs...)
	err := errors.Join(errs...)
	s.deps.Logger.Error("generator.build.failed", "errors", len(errs), "error", err)
	return result, err
}

// loadContext lists every page, so sibling signatures see all locales, then
// narrows the render set to the requested paths and locales.
func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*buildContext, error) {
	buildCtx := &buildContext{
		Siblings:    map[string]string{},
		GeneratedAt: s.now().UTC(),
	}
	inputs, err := s.inputsHash()
	if err != nil {
		return nil, err
	}
	buildCtx.InputsHash = inputs

	locales := s.locales(opts)
	buildCtx.Locales = locales
	if opts.AssetsOnly {
		return buildCtx, nil
	}

	all, err := s.deps.Store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("generator: list pages: %w", err)
	}
	buildCtx.Siblings = siblingSignatures(all)

	wantLocale := map[string]struct{}{}
	for _, locale := range locales {
		wantLocale[locale] = struct{}{}
	}
	wantPath := map[string]struct{}{}
	for _, p := range opts.Paths {
		wantPath[content.NormalizePath(p)] = struct{}{}
	}
	for _, page := range all {
		if _, ok := wantLocale[page.Locale]; !ok {
			continue
		}
		if len(wantPath) > 0 {
			if _, ok := wantPath[content.NormalizePath(page.Path)]; !ok {
				continue
			}
		}
		buildCtx.Pages = append(buildCtx.Pages, page)
	}
	return buildCtx, nil
}

func (s *service) locales(opts BuildOptions) []string {
	configured := s.cfg.Locales
	if len(configured) == 0 && strings.TrimSpace(s.cfg.DefaultLocale) != "" {
		configured = []string{s.cfg.DefaultLocale}
	}
	if len(opts.Locales) == 0 {
		return slices.Clone(configured)
	}
	out := make([]string, 0, len(opts.Locales))
	for _, locale := range configured {
		if slices.Contains(opts.Locales, locale) {
			out = append(out, locale)
		}
	}
	return out
}

func (s *service) renderConcurrently(
	ctx context.Context,
	buildCtx *buildContext,
	workers int,
	manifest *buildManifest,
	skipUnchanged bool,
	collect func(renderOutcome),
) error {
	grouped := groupPagesByLocale(buildCtx.Pages)
	if len(grouped) == 0 {
		return nil
	}

	jobs := make(chan []*content.Page)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				for _, page := range batch {
					if err := ctx.Err(); err != nil {
						collect(cancelledOutcome(page, err))
						return
					}
					collect(s.renderPage(ctx, buildCtx, page, manifest, skipUnchanged))
				}
			}
		}()
	}

	for _, locale := range buildCtx.Locales {
		batch, ok := grouped[locale]
		if !ok {
			continue
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- batch:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *service) renderPage(
	ctx context.Context,
	buildCtx *buildContext,
	page *content.Page,
	manifest *buildManifest,
	skipUnchanged bool,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			Path:   page.Path,
			Locale: page.Locale,
			Route:  page.Route,
		},
	}
	if !page.HasRoute() {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		outcome.diagnostic.Reason = "no route"
		return outcome
	}

	ctx = logging.ContextWithFields(ctx, map[string]any{"build_route": page.Route})
	output := joinOutputPath(s.baseDir(), routes.OutputPath(page.Route))
	hash, err := pageHash(page, buildCtx.Siblings[content.NormalizePath(page.Path)], buildCtx.InputsHash)
	if err != nil {
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}
	if skipUnchanged && manifest.shouldSkipPage(page.Path, page.Locale, hash, output) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		outcome.diagnostic.Reason = "unchanged"
		return outcome
	}

	renderCtx := ctx
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}

	start := time.Now()
	html, err := s.deps.Documents.Build(renderCtx, page, map[string]any{
		"generated_at": buildCtx.GeneratedAt,
	})
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	s.deps.Metrics.ObservePageRender(page.Locale, duration, err)
	if err != nil {
		wrapped := fmt.Errorf("generator: build %s (%s): %w", page.Path, page.Locale, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		PageID:   page.ID,
		Path:     page.Path,
		Locale:   page.Locale,
		Route:    page.Route,
		Output:   output,
		HTML:     html,
		Checksum: computeHashFromString(html),
		Hash:     hash,
		Duration: duration,
	}
	return outcome
}

func cancelledOutcome(page *content.Page, err error) renderOutcome {
	return renderOutcome{
		diagnostic: RenderDiagnostic{
			Path:   page.Path,
			Locale: page.Locale,
			Route:  page.Route,
			Err:    err,
		},
		err: err,
	}
}

func (s *service) BuildPage(ctx context.Context, pagePath, locale string) (*RenderedPage, error) {
	if s.deps.Store == nil {
		return nil, errStoreRequired
	}
	if s.deps.Documents == nil {
		return nil, errDocumentsRequired
	}
	if strings.TrimSpace(locale) == "" {
		locale = s.cfg.DefaultLocale
	}
	page, err := s.deps.Store.Page(ctx, pagePath, locale)
	if err != nil {
		return nil, err
	}
	if !page.HasRoute() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrPageNotRoutable, page.Path, page.Locale)
	}

	buildCtx := &buildContext{GeneratedAt: s.now().UTC(), Siblings: map[string]string{}}
	if buildCtx.InputsHash, err = s.inputsHash(); err != nil {
		return nil, err
	}
	if all, err := s.deps.Store.List(ctx, ""); err == nil {
		buildCtx.Siblings = siblingSignatures(all)
	}

	outcome := s.renderPage(ctx, buildCtx, page, nil, false)
	if outcome.err != nil {
		return nil, outcome.err
	}
	writer := newArtifactWriter(s.deps.Storage)
	pages := []RenderedPage{outcome.page}
	if err := s.persistPages(ctx, writer, pages); err != nil {
		return nil, err
	}

	manifest, err := s.loadManifest(ctx, writer)
	if err == nil {
		manifest.setPage(manifestPage{
			PageID:     pages[0].PageID.String(),
			Path:       pages[0].Path,
			Locale:     pages[0].Locale,
			Route:      pages[0].Route,
			Output:     pages[0].Output,
			Hash:       pages[0].Hash,
			Checksum:   pages[0].Checksum,
			RenderedAt: buildCtx.GeneratedAt,
		})
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			return &pages[0], err
		}
	}
	s.deps.Metrics.IncPages(ResultBuilt, 1)
	return &pages[0], nil
}

func (s *service) BuildAssets(ctx context.Context) (*BuildResult, error) {
	return s.Build(ctx, BuildOptions{AssetsOnly: true})
}

func (s *service) BuildRoutes(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	written, err := s.writeRoutes(ctx, newArtifactWriter(s.deps.Storage))
	result := &BuildResult{RoutesBuilt: written, Duration: time.Since(start)}
	if err != nil {
		return s.finish(result, []error{err})
	}
	return result, nil
}

func (s *service) Clean(ctx context.Context) error {
	writer := newArtifactWriter(s.deps.Storage)
	if err := writer.Remove(ctx, s.baseDir()); err != nil {
		return fmt.Errorf("generator: clean %s: %w", s.baseDir(), err)
	}
	s.deps.Logger.Debug("generator.clean.completed", "output_dir", s.baseDir())
	return nil
}

func (s *service) persistPages(ctx context.Context, writer artifactWriter, pages []RenderedPage) error {
	if len(pages) == 0 {
		return nil
	}
	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, writer, dirCache, s.baseDir()); err != nil {
		return err
	}
	for i := range pages {
		if err := ensureDir(ctx, writer, dirCache, outputDir(pages[i].Output)); err != nil {
			return err
		}
		metadata := map[string]string{
			"page_id": pages[i].PageID.String(),
			"path":    pages[i].Path,
			"route":   pages[i].Route,
		}
		if s.cfg.Incremental {
			metadata["incremental"] = "true"
		}
		req := storage.Artifact{
			Path:        pages[i].Output,
			Body:        strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Locale:      pages[i].Locale,
			Kind:        storage.KindPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    pages[i].Checksum,
			Meta:        metadata,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

type assetCopySummary struct {
	Built   int
	Skipped int
	Keys    map[string]struct{}
}

func (s *service) copyAssets(ctx context.Context, writer artifactWriter, manifest *buildManifest, skipUnchanged bool) (assetCopySummary, error) {
	summary := assetCopySummary{Keys: map[string]struct{}{}}
	if s.deps.Assets == nil || s.deps.Assets.FS() == nil {
		return summary, nil
	}
	files, err := s.deps.Assets.Files("")
	if err != nil {
		return summary, err
	}
	dirCache := map[string]struct{}{}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Keys[name] = struct{}{}
		data, err := fs.ReadFile(s.deps.Assets.FS(), name)
		if err != nil {
			return summary, fmt.Errorf("generator: read asset %s: %w", name, err)
		}
		fullPath := joinOutputPath(s.baseDir(), s.deps.Assets.URLFor(name))
		checksum := computeHash(data)
		if skipUnchanged && s.cfg.Incremental && manifest.shouldSkipAsset(name, checksum, fullPath) {
			summary.Skipped++
			continue
		}
		if err := ensureDir(ctx, writer, dirCache, outputDir(fullPath)); err != nil {
			return summary, err
		}
		req := storage.Artifact{
			Path:        fullPath,
			Body:        bytes.NewReader(data),
			Size:        int64(len(data)),
			Kind:        storage.KindAsset,
			ContentType: detectContentType(name),
			Checksum:    checksum,
			Meta:        map[string]string{"asset": name},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return summary, err
		}
		summary.Built++
		manifest.setAsset(manifestAsset{
			Source:   name,
			Output:   fullPath,
			Checksum: checksum,
			Size:     int64(len(data)),
			CopiedAt: s.now().UTC(),
		})
	}
	s.deps.Metrics.IncAssets(ResultBuilt, summary.Built)
	s.deps.Metrics.IncAssets(ResultSkipped, summary.Skipped)
	return summary, nil
}

// writeRoutes renders every registered provider route to its output file.
func (s *service) writeRoutes(ctx context.Context, writer artifactWriter) (int, error) {
	s.mu.RLock()
	providers := slices.Clone(s.providers)
	s.mu.RUnlock()
	if len(providers) == 0 {
		return 0, nil
	}
	list, err := routes.Collect(ctx, providers...)
	if err != nil {
		return 0, err
	}
	dirCache := map[string]struct{}{}
	written := 0
	for _, route := range list {
		if route.Render == nil {
			continue
		}
		body, err := route.Render(ctx)
		if err != nil {
			return written, fmt.Errorf("generator: render route %s: %w", route.Path, err)
		}
		fullPath := joinOutputPath(s.baseDir(), routes.OutputPath(route.Path))
		if err := ensureDir(ctx, writer, dirCache, outputDir(fullPath)); err != nil {
			return written, err
		}
		req := storage.Artifact{
			Path:        fullPath,
			Body:        bytes.NewReader(body),
			Size:        int64(len(body)),
			Kind:        storage.KindRoute,
			ContentType: route.ContentType,
			Checksum:    computeHash(body),
			Meta:        map[string]string{"route": route.Path},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return written, err
		}
		written++
	}
	s.deps.Metrics.IncRoutes(written)
	return written, nil
}

func (s *service) loadManifest(ctx context.Context, writer artifactWriter) (*buildManifest, error) {
	data, ok, err := writer.ReadFile(ctx, manifestPath(s.baseDir()))
	if err != nil {
		return newBuildManifest(), fmt.Errorf("generator: read manifest: %w", err)
	}
	if !ok {
		return newBuildManifest(), nil
	}
	manifest, err := parseManifest(data)
	if err != nil {
		return newBuildManifest(), err
	}
	return manifest, nil
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	target := manifestPath(s.baseDir())
	if err := ensureDir(ctx, writer, map[string]struct{}{}, outputDir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	return writer.WriteFile(ctx, storage.Artifact{
		Path:        target,
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
		Kind:        storage.KindManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Meta:        metadata,
	})
}

// inputsHash digests every template file so template edits invalidate
// incremental builds.
func (s *service) inputsHash() (string, error) {
	if s.deps.Templates == nil {
		return "", nil
	}
	files, err := doublestar.Glob(s.deps.Templates, "**", doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("generator: list templates: %w", err)
	}
	sort.Strings(files)
	h := sha256.New()
	for _, name := range files {
		data, err := fs.ReadFile(s.deps.Templates, name)
		if err != nil {
			return "", fmt.Errorf("generator: read template %s: %w", name, err)
		}
		fmt.Fprintf(h, "%s:%d\n", name, len(data))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *service) baseDir() string {
	return strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
}

func (s *service) effectiveWorkerCount(localeCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if localeCount > 0 && workers > localeCount {
		return localeCount
	}
	return workers
}

// pageHash covers everything a document depends on besides the templates:
// the page itself, its collection defaults and which siblings exist.
func pageHash(page *content.Page, siblings, inputs string) (string, error) {
	payload, err := json.Marshal(struct {
		Path       string         `json:"path"`
		Locale     string         `json:"locale"`
		Route      string         `json:"route"`
		Fields     map[string]any `json:"fields"`
		Collection map[string]any `json:"collection"`
		UpdatedAt  time.Time      `json:"updated_at"`
		Siblings   string         `json:"siblings"`
		Inputs     string         `json:"inputs"`
	}{
		Path:       page.Path,
		Locale:     page.Locale,
		Route:      page.Route,
		Fields:     page.Fields,
		Collection: page.CollectionFields(),
		UpdatedAt:  page.UpdatedAt.UTC(),
		Siblings:   siblings,
		Inputs:     inputs,
	})
	if err != nil {
		return "", fmt.Errorf("generator: hash %s (%s): %w", page.Path, page.Locale, err)
	}
	return computeHash(payload), nil
}

func siblingSignatures(pages []*content.Page) map[string]string {
	grouped := map[string][]string{}
	for _, page := range pages {
		if page == nil || !page.HasRoute() {
			continue
		}
		key := content.NormalizePath(page.Path)
		grouped[key] = append(grouped[key], page.Locale+"="+page.Route)
	}
	out := make(map[string]string, len(grouped))
	for key, entries := range grouped {
		sort.Strings(entries)
		out[key] = strings.Join(entries, ",")
	}
	return out
}

func groupPagesByLocale(pages []*content.Page) map[string][]*content.Page {
	grouped := make(map[string][]*content.Page, len(pages))
	for _, page := range pages {
		if page == nil {
			continue
		}
		grouped[page.Locale] = append(grouped[page.Locale], page)
	}
	return grouped
}

func sortRendered(pages []RenderedPage) {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Path == pages[j].Path {
			return pages[i].Locale < pages[j].Locale
		}
		return pages[i].Path < pages[j].Path
	})
}

func sortDiagnostics(list []RenderDiagnostic) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Path == list[j].Path {
			return list[i].Locale < list[j].Locale
		}
		return list[i].Path < list[j].Path
	})
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func detectContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildPage(context.Context, string, string) (*RenderedPage, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildAssets(context.Context) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildRoutes(context.Context) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) RegisterRoutes(...routes.Provider) error {
	return ErrServiceDisabled
}
