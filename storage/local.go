package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStore writes banners under Dir and serves them from URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix}, nil
}

func (l *LocalStore) Upload(ctx context.Context, r io.Reader, size int64, filename, contentType string) (string, error) {
	name := objectName(filename, time.Now())
	dst := filepath.Join(l.Dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return l.URLPrefix + "/" + name, nil
}

func (l *LocalStore) Delete(ctx context.Context, url string) error {
	key := objectKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("not a banner url: %s", url)
	}
	return os.Remove(filepath.Join(l.Dir, filepath.Base(key)))
}
