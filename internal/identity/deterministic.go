package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const keyPrefix = "pagebuilder:"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys are namespaced per entity kind by the typed helpers below.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID identifies one locale variant of a page. Siblings share the path
// and differ by locale, so both are part of the key.
func PageUUID(path, locale string) uuid.UUID {
	return UUID(keyPrefix + "page:" + normalizePath(path) + ":" + strings.ToLower(strings.TrimSpace(locale)))
}

// CollectionUUID identifies a collection by name.
func CollectionUUID(name string) uuid.UUID {
	return UUID(keyPrefix + "collection:" + strings.ToLower(strings.TrimSpace(name)))
}

// PartialUUID identifies a partial in the preview gallery.
func PartialUUID(name string) uuid.UUID {
	return UUID(keyPrefix + "partial:" + strings.TrimSpace(name))
}

func normalizePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	return "/" + trimmed
}
