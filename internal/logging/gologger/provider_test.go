package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
)

type recordingLogger struct {
	levels   []string
	fields   []map[string]any
	contexts int
}

var _ glog.FieldsLogger = (*recordingLogger)(nil)

func (r *recordingLogger) Trace(string, ...any) { r.levels = append(r.levels, "trace") }
func (r *recordingLogger) Debug(string, ...any) { r.levels = append(r.levels, "debug") }
func (r *recordingLogger) Info(string, ...any)  { r.levels = append(r.levels, "info") }
func (r *recordingLogger) Warn(string, ...any)  { r.levels = append(r.levels, "warn") }
func (r *recordingLogger) Error(string, ...any) { r.levels = append(r.levels, "error") }
func (r *recordingLogger) Fatal(string, ...any) { r.levels = append(r.levels, "fatal") }

func (r *recordingLogger) WithContext(context.Context) glog.Logger {
	r.contexts++
	return r
}

func (r *recordingLogger) WithFields(fields map[string]any) glog.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func TestFromRuntimePrefersPrettyInDevelopment(t *testing.T) {
	cfg := FromRuntime(runtimeconfig.LoggingConfig{Level: "debug"}, "development")
	if cfg.Format != "pretty" || cfg.Level != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := FromRuntime(runtimeconfig.LoggingConfig{Format: "json"}, "development"); got.Format != "json" {
		t.Fatalf("explicit format should win, got %q", got.Format)
	}
	if got := FromRuntime(runtimeconfig.LoggingConfig{}, "production"); got.Format != "" {
		t.Fatalf("expected default format outside development, got %q", got.Format)
	}
}

func TestNewProviderFormats(t *testing.T) {
	for _, format := range []string{"", "console", "JSON", "pretty"} {
		p, err := NewProvider(Config{Format: format, Level: "warning", Focus: []string{" ", "pagebuilder.document"}})
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		p.GetLogger("pagebuilder.document").Debug("provider.ready")
	}
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNilProviderFallsBackToNoop(t *testing.T) {
	var p *Provider
	if p.GetLogger("pagebuilder") == nil {
		t.Fatal("expected noop logger")
	}
}

func TestModuleLoggerDelegatesLevels(t *testing.T) {
	rec := &recordingLogger{}
	logger := adapt(rec)
	logger.Trace("a")
	logger.Debug("b")
	logger.Info("c")
	logger.Warn("d")
	logger.Error("e")
	logger.Fatal("f")

	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(rec.levels) != len(want) {
		t.Fatalf("expected %v, got %v", want, rec.levels)
	}
	for i := range want {
		if rec.levels[i] != want[i] {
			t.Fatalf("level %d: expected %s, got %s", i, want[i], rec.levels[i])
		}
	}
}

func TestModuleLoggerClonesFields(t *testing.T) {
	rec := &recordingLogger{}
	fields := map[string]any{"partial": "hero"}
	logging.WithFields(adapt(rec), fields)
	fields["partial"] = "footer"

	if len(rec.fields) != 1 || rec.fields[0]["partial"] != "hero" {
		t.Fatalf("expected cloned fields, got %v", rec.fields)
	}
}

func TestModuleLoggerAppliesContextFields(t *testing.T) {
	rec := &recordingLogger{}
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"page_path": "/about"})
	adapt(rec).WithContext(ctx)

	if len(rec.fields) != 1 || rec.fields[0]["page_path"] != "/about" {
		t.Fatalf("expected context fields, got %v", rec.fields)
	}
	if rec.contexts != 1 {
		t.Fatalf("expected context to reach go-logger, got %d", rec.contexts)
	}

	adapt(rec).WithContext(context.Background())
	if len(rec.fields) != 1 {
		t.Fatalf("expected no fields for a bare context, got %v", rec.fields)
	}
}
