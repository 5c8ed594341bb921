package generator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-pagebuilder/pkg/generator"
)

func TestDisabledServiceReportsDisabled(t *testing.T) {
	svc := generator.NewDisabledService()
	if _, err := svc.Build(context.Background(), generator.BuildOptions{}); !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled from clean, got %v", err)
	}
}

func TestNewServiceRequiresStore(t *testing.T) {
	svc := generator.NewService(generator.Config{OutputDir: "dist"}, generator.Dependencies{})
	if _, err := svc.Build(context.Background(), generator.BuildOptions{DryRun: true}); err == nil {
		t.Fatal("expected error without a content store")
	}
}
