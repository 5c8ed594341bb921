package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
	"github.com/goliatone/go-pagebuilder/pkg/storage"
)

// artifactWriter is the build loop's view of the storage provider.
type artifactWriter interface {
	EnsureDir(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, artifact storage.Artifact) error
	ReadFile(ctx context.Context, path string) (data []byte, found bool, err error)
	Remove(ctx context.Context, path string) error
}

// newArtifactWriter returns a writer that drops everything when provider is
// nil, which is how dry runs without storage behave.
func newArtifactWriter(provider interfaces.StorageProvider) artifactWriter {
	if provider == nil {
		return discardWriter{}
	}
	return providerWriter{provider}
}

type providerWriter struct {
	provider interfaces.StorageProvider
}

func (w providerWriter) EnsureDir(ctx context.Context, dir string) error {
	if dir = strings.TrimSpace(dir); dir == "" || dir == "." {
		return nil
	}
	_, err := w.provider.Exec(ctx, storage.OpEnsureDir, dir)
	return err
}

func (w providerWriter) WriteFile(ctx context.Context, artifact storage.Artifact) error {
	switch {
	case strings.TrimSpace(artifact.Path) == "":
		return errors.New("generator: artifact has no path")
	case artifact.Body == nil:
		return fmt.Errorf("generator: artifact %s has no body", artifact.Path)
	}
	if _, err := w.provider.Exec(ctx, storage.OpWrite, artifact); err != nil {
		return fmt.Errorf("generator: write %s %s: %w", artifact.Kind, artifact.Path, err)
	}
	return nil
}

func (w providerWriter) ReadFile(ctx context.Context, path string) ([]byte, bool, error) {
	rows, err := w.provider.Query(ctx, storage.OpRead, path)
	if err != nil || rows == nil {
		return nil, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, false, nil
	}
	var data []byte
	err = rows.Scan(&data)
	return data, err == nil, err
}

func (w providerWriter) Remove(ctx context.Context, path string) error {
	_, err := w.provider.Exec(ctx, storage.OpRemove, path)
	return err
}

type discardWriter struct{}

func (discardWriter) EnsureDir(context.Context, string) error                { return nil }
func (discardWriter) WriteFile(context.Context, storage.Artifact) error      { return nil }
func (discardWriter) ReadFile(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (discardWriter) Remove(context.Context, string) error                   { return nil }
