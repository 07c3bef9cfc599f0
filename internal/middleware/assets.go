package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const assetCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// AssetsWithCache serves dir under prefix. Responses carry a weak content
// ETag, and a matching If-None-Match gets 304.
func AssetsWithCache(prefix, dir string) http.Handler {
	tags := &etagCache{dir: dir, entries: map[string]etagEntry{}}
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", assetCacheControl)
		if et, ok := tags.lookup(strings.TrimPrefix(r.URL.Path, prefix)); ok {
			w.Header().Set("ETag", et)
			if r.Header.Get("If-None-Match") == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

type etagEntry struct {
	size    int64
	modTime time.Time
	tag     string
}

// etagCache hashes files on first request and rehashes when size or mtime
// changes, so edited assets pick up a new tag without a restart.
type etagCache struct {
	dir string

	mu      sync.Mutex
	entries map[string]etagEntry
}

func (c *etagCache) lookup(urlPath string) (string, bool) {
	rel := path.Clean("/" + urlPath)
	full := filepath.Join(c.dir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[rel]; ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		return e.tag, true
	}
	tag, err := fileETag(full)
	if err != nil {
		return "", false
	}
	c.entries[rel] = etagEntry{size: info.Size(), modTime: info.ModTime(), tag: tag}
	return tag, true
}

func fileETag(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}
