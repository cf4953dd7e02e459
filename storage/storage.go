package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore persists uploaded banner images and returns the URL clients use to fetch them.
type BlobStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, filename, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

const bannerPrefix = "banners"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

// objectName builds a collision-free name that keeps the original extension,
// e.g. banner-1700000000000-1a2b3c4d.png
func objectName(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(sanitizeFilename(filename)))
	return fmt.Sprintf("banner-%d-%s%s", now.UnixMilli(), uuid.New().String()[:8], ext)
}

// objectKeyFromURL returns the "banners/<name>" key embedded in a public URL,
// or "" when the URL does not point into the banner prefix.
func objectKeyFromURL(url string) string {
	idx := strings.Index(url, "/"+bannerPrefix+"/")
	if idx < 0 {
		return ""
	}
	name := path.Base(url[idx:])
	if name == "." || name == "/" || name == bannerPrefix {
		return ""
	}
	return bannerPrefix + "/" + name
}
