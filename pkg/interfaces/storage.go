package interfaces

import "github.com/goliatone/go-pagebuilder/pkg/storage"

// The generator writes built pages and copied assets through these storage
// aliases so hosts can swap the filesystem writer for their own sink.
type (
	StorageProvider = storage.Provider
	Rows            = storage.Rows
	Result          = storage.Result
	Transaction     = storage.Transaction
)
