package resources

import (
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-pagebuilder/internal/builderr"
)

func TestEmitSkipsDuplicates(t *testing.T) {
	d := NewDeduplicator(Resolver{}, URLOptions{})
	asset := FromAsset(Asset{Path: "/dist/shared.css", Fingerprint: "abc123"})

	first, err := d.Emit(ElementStylesheet, asset)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if first != `<link rel="stylesheet" href="/dist/shared.css?fingerprint=abc123">` {
		t.Fatalf("unexpected markup %q", first)
	}

	second, err := d.Emit(ElementStylesheet, FromURL("/dist/shared.css?fingerprint=abc123"))
	if err != nil {
		t.Fatalf("emit duplicate: %v", err)
	}
	if second != "" {
		t.Fatalf("expected duplicate to be skipped, got %q", second)
	}
}

func TestEmitScriptWithLoadOptions(t *testing.T) {
	d := NewDeduplicator(Resolver{}, URLOptions{})
	res := Load(FromURL("/dist/app.js"), LoadOptions{Async: true, Defer: true, Preload: true})

	got, err := d.Emit(ElementScript, res)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	want := `<link rel="preload" href="/dist/app.js" as="script"><script src="/dist/app.js" async defer></script>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEmitUnresolvedIsConfigurationError(t *testing.T) {
	d := NewDeduplicator(Resolver{}, URLOptions{})
	_, err := d.Emit(ElementScript, FromAsset(Asset{Name: "broken"}))
	if err == nil {
		t.Fatalf("expected error for unresolved resource")
	}
	if !builderr.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected error to name the resource, got %v", err)
	}
}

func TestRegistryConcurrentRegister(t *testing.T) {
	reg := NewRegistry()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.Register("/dist/shared.js") {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one registration, got %d", winners)
	}
	if reg.Len() != 1 || !reg.Has("/dist/shared.js") {
		t.Fatalf("unexpected registry state")
	}
}
