// Package storage keeps photo binaries outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when a key has no stored object
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore stores binary objects by key
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
	// PresignGet returns a time-limited download link for key.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PhotoKey builds the object key of an upload: <user>/<photo id><ext>
func PhotoKey(userID, photoID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", userID, photoID, ext)
}
