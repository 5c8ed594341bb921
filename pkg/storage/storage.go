// Package storage is the sink the site generator writes built artifacts to,
// with a filesystem implementation.
package storage

import (
	"context"
	"io"
)

// Operations understood by a Provider. OpRead goes through Query, the rest
// through Exec.
const (
	// OpEnsureDir takes a path.
	OpEnsureDir = "generator.ensure_dir"
	// OpWrite takes one Artifact.
	OpWrite = "generator.write"
	// OpRead takes a path. Rows scan into *[]byte and are empty when missing.
	OpRead = "generator.read"
	// OpRemove takes a path; the output base path clears everything.
	OpRemove = "generator.remove"
)

// Kind tells providers what an artifact is so they can route or cache it.
type Kind string

const (
	KindPage     Kind = "page"
	KindAsset    Kind = "asset"
	KindRoute    Kind = "route"
	KindManifest Kind = "manifest"
)

// Artifact is one generated file.
type Artifact struct {
	Path        string
	Body        io.Reader
	Size        int64
	Kind        Kind
	ContentType string
	Locale      string
	Checksum    string
	Meta        map[string]string
}

// Provider runs named operations in the style of database/sql so hosts can
// back the output with object stores or databases.
type Provider interface {
	Query(ctx context.Context, op string, args ...any) (Rows, error)
	Exec(ctx context.Context, op string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

type Config struct {
	Name     string
	Driver   string
	DSN      string
	ReadOnly bool
}

type (
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Close() error
	}
	Result interface {
		RowsAffected() (int64, error)
		LastInsertId() (int64, error)
	}
	Transaction interface {
		Provider
		Commit() error
		Rollback() error
	}
)
