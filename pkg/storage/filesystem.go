package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrReadOnly is returned for writes against a read-only provider.
var ErrReadOnly = errors.New("storage: provider is read-only")

// Filesystem writes artifacts below a root directory. Paths that start with
// the configured base (usually the generator output dir) are made relative
// to it, so "dist/about/index.html" lands in {root}/about/index.html.
type Filesystem struct {
	root     string
	base     string
	readOnly bool

	mu      sync.Mutex
	written int64
}

var _ Provider = (*Filesystem)(nil)

// NewFilesystem returns a provider rooted at root.
func NewFilesystem(root, base string) *Filesystem {
	base = strings.Trim(filepath.ToSlash(filepath.Clean(strings.TrimSpace(base))), "/")
	if base == "." {
		base = ""
	}
	return &Filesystem{root: root, base: base}
}

// NewFromConfig builds a provider from configuration. The DSN is the root
// directory.
func NewFromConfig(cfg Config, base string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "filesystem", "fs":
		root := strings.TrimSpace(cfg.DSN)
		if root == "" {
			return nil, fmt.Errorf("storage: filesystem provider requires a root directory")
		}
		fs := NewFilesystem(root, base)
		fs.readOnly = cfg.ReadOnly
		return fs, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// Root returns the directory artifacts are written to.
func (s *Filesystem) Root() string {
	return s.root
}

// BytesWritten reports the bytes written since creation.
func (s *Filesystem) BytesWritten() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

func (s *Filesystem) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query != OpRead {
		return nil, fmt.Errorf("storage: unsupported query %q", query)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("storage: read requires path")
	}
	data, err := os.ReadFile(s.abs(s.normalizePath(args[0])))
	if errors.Is(err, os.ErrNotExist) {
		return &fileRows{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data, present: true}, nil
}

func (s *Filesystem) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	if err := ctx.Err(); err != nil {
		return emptyResult{}, err
	}
	if s.readOnly {
		return emptyResult{}, ErrReadOnly
	}
	switch query {
	case OpEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: ensure_dir requires path")
		}
		return emptyResult{}, os.MkdirAll(s.abs(s.normalizePath(args[0])), 0o755)
	case OpWrite:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: write requires an artifact")
		}
		artifact, ok := args[0].(Artifact)
		if !ok || artifact.Body == nil {
			return emptyResult{}, fmt.Errorf("storage: write expects an Artifact with a body, got %T", args[0])
		}
		return s.write(s.normalizePath(artifact.Path), artifact.Body)
	case OpRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: remove requires path")
		}
		rel := s.normalizePath(args[0])
		if rel == "" {
			return emptyResult{}, s.clearRoot()
		}
		err := os.RemoveAll(s.abs(rel))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, fmt.Errorf("storage: unsupported operation %q", query)
	}
}

// Transaction runs fn against the provider. Writes are not rolled back.
func (s *Filesystem) Transaction(_ context.Context, fn func(tx Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&filesystemTx{storage: s})
}

func (s *Filesystem) write(rel string, reader io.Reader) (Result, error) {
	full := s.abs(rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return emptyResult{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".write-*")
	if err != nil {
		return emptyResult{}, err
	}
	n, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return emptyResult{}, err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return emptyResult{}, err
	}
	s.mu.Lock()
	s.written += n
	s.mu.Unlock()
	return writeResult(n), nil
}

// clearRoot empties the root directory but keeps it in place.
func (s *Filesystem) clearRoot() error {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Filesystem) abs(rel string) string {
	if rel == "" {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *Filesystem) normalizePath(arg any) string {
	p, _ := arg.(string)
	p = strings.Trim(filepath.ToSlash(filepath.Clean(strings.TrimSpace(p))), "/")
	if p == "." {
		return ""
	}
	if s.base != "" {
		if p == s.base {
			return ""
		}
		if strings.HasPrefix(p, s.base+"/") {
			return strings.TrimPrefix(p, s.base+"/")
		}
	}
	return p
}

type filesystemTx struct {
	storage *Filesystem
}

func (tx *filesystemTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return tx.storage.Query(ctx, query, args...)
}

func (tx *filesystemTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return tx.storage.Exec(ctx, query, args...)
}

func (tx *filesystemTx) Transaction(context.Context, func(Transaction) error) error {
	return errors.New("storage: nested transactions not supported")
}

func (tx *filesystemTx) Commit() error   { return nil }
func (tx *filesystemTx) Rollback() error { return nil }

type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type writeResult int64

func (r writeResult) RowsAffected() (int64, error) { return int64(r), nil }
func (writeResult) LastInsertId() (int64, error)   { return 0, nil }

type fileRows struct {
	data    []byte
	present bool
	read    bool
}

func (r *fileRows) Next() bool {
	if !r.present || r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("storage: scan requires destination")
	}
	bytesDest, ok := dest[0].(*[]byte)
	if !ok {
		return fmt.Errorf("storage: unsupported scan destination %T", dest[0])
	}
	*bytesDest = append((*bytesDest)[:0], r.data...)
	return nil
}

func (r *fileRows) Close() error {
	return nil
}
