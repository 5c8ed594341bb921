package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

type fieldRecorder struct {
	interfaces.Logger
	fields []map[string]any
}

func (r *fieldRecorder) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

type namedProvider struct {
	names  []string
	logger interfaces.Logger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestModuleLoggerWithoutProvider(t *testing.T) {
	logger := ModuleLogger(nil, Document)
	if _, ok := logger.(discard); !ok {
		t.Fatalf("expected discard logger, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("ignored")
}

func TestModuleLoggerNamesAndTags(t *testing.T) {
	cases := map[string]string{"": Root, " pagebuilder.generator ": Generator, Content: Content}
	for in, want := range cases {
		rec := &fieldRecorder{Logger: NoOp()}
		provider := &namedProvider{logger: rec}
		ModuleLogger(provider, in)

		if len(provider.names) != 1 || provider.names[0] != want {
			t.Fatalf("%q: expected provider lookup %s, got %v", in, want, provider.names)
		}
		if len(rec.fields) != 1 || rec.fields[0]["module"] != want {
			t.Fatalf("%q: expected module field %s, got %v", in, want, rec.fields)
		}
	}
}

func TestModuleLoggerNilFromProvider(t *testing.T) {
	if _, ok := ModuleLogger(&namedProvider{}, Root).(discard); !ok {
		t.Fatal("expected discard logger when the provider returns nil")
	}
}

func TestPageAndPartialFields(t *testing.T) {
	rec := &fieldRecorder{Logger: NoOp()}
	WithPageContext(rec, " /about ", " ")
	WithPartial(rec, "hero")
	WithPartial(rec, "  ")

	if len(rec.fields) != 2 {
		t.Fatalf("expected blank partial to be skipped, got %v", rec.fields)
	}
	if rec.fields[0]["page_path"] != "/about" {
		t.Fatalf("expected trimmed path, got %v", rec.fields[0])
	}
	if _, ok := rec.fields[0]["locale"]; ok {
		t.Fatal("expected blank locale to be omitted")
	}
	if rec.fields[1]["partial"] != "hero" {
		t.Fatalf("unexpected partial fields %v", rec.fields[1])
	}
}

func TestContextFieldsLayer(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"build_route": "/"})
	ctx = ContextWithFields(ctx, map[string]any{"build_id": "b1", "build_route": "/about/"})

	fields := ContextFields(ctx)
	if fields["build_id"] != "b1" || fields["build_route"] != "/about/" {
		t.Fatalf("expected later fields to win, got %v", fields)
	}
	fields["build_id"] = "mutated"
	if ContextFields(ctx)["build_id"] != "b1" {
		t.Fatal("expected ContextFields to return a copy")
	}
	if ContextFields(context.Background()) != nil {
		t.Fatal("expected nil fields for a bare context")
	}
}
