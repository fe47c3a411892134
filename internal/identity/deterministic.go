// Package identity derives stable identifiers so repeated runs over the same
// corpus converge on the same document records.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
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

// DocumentUUID identifies a source document across runs by locale and slug.
func DocumentUUID(locale, slug string) uuid.UUID {
	return UUID("payload-migrate:document:" + strings.ToLower(strings.TrimSpace(locale)) + ":" + strings.TrimSpace(slug))
}

// ComponentUUID identifies a component name for unhandled-component rollups.
func ComponentUUID(name string) uuid.UUID {
	return UUID("payload-migrate:component:" + strings.ToLower(strings.TrimSpace(name)))
}
