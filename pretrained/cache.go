// cache.go - Cache-Management fuer heruntergeladene Konfigurationen
//
// Jede URL wird unter <cacheDir>/configs/<sha256(url)> abgelegt,
// daneben eine Metadaten-Datei <sha256(url)>.meta mit URL und ETag.
package pretrained

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Cache-Konstanten
const (
	CacheSubdir    = "configs"
	CacheMetaExt   = ".meta"
	cacheTmpPrefix = ".download-"
)

// ErrCacheAccessDenied wird bei fehlenden Rechten im Cache-Verzeichnis zurueckgegeben
var ErrCacheAccessDenied = errors.New("zugriff auf cache verweigert")

// CacheEntry beschreibt eine gecachte Datei
type CacheEntry struct {
	URL       string    `json:"url"`
	ETag      string    `json:"etag,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Path      string    `json:"-"`
	Size      int64     `json:"-"`
}

// CacheDir gibt das Verzeichnis fuer gecachte Configs zurueck
func (c *Client) CacheDir() string {
	return filepath.Join(c.cacheDir, CacheSubdir)
}

// CachePath gibt den lokalen Pfad fuer eine URL zurueck, unabhaengig davon ob er existiert
func (c *Client) CachePath(url string) string {
	return filepath.Join(c.CacheDir(), urlToFilename(url))
}

// Cached gibt den Cache-Eintrag fuer eine URL zurueck
func (c *Client) Cached(url string) (*CacheEntry, bool) {
	path := c.CachePath(url)
	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		return nil, false
	}

	entry := &CacheEntry{URL: url, Path: path, Size: stat.Size(), FetchedAt: stat.ModTime()}
	if data, err := os.ReadFile(path + CacheMetaExt); err == nil {
		var meta CacheEntry
		if json.Unmarshal(data, &meta) == nil && meta.URL == url {
			entry.ETag = meta.ETag
			entry.FetchedAt = meta.FetchedAt
		}
	}
	return entry, true
}

// CacheEntries listet alle gecachten Configs, sortiert nach URL
func (c *Client) CacheEntries() ([]CacheEntry, error) {
	entries, err := os.ReadDir(c.CacheDir())
	if errors.Is(err, fs.ErrNotExist) {
		return []CacheEntry{}, nil
	}
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, ErrCacheAccessDenied
		}
		return nil, fmt.Errorf("cache lesen fehlgeschlagen: %w", err)
	}

	result := make([]CacheEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CacheMetaExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.CacheDir(), e.Name()))
		if err != nil {
			continue
		}
		var meta CacheEntry
		if err := json.Unmarshal(data, &meta); err != nil || meta.URL == "" {
			continue
		}
		if entry, ok := c.Cached(meta.URL); ok {
			result = append(result, *entry)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].URL < result[j].URL })
	return result, nil
}

// RemoveCached loescht den Cache-Eintrag fuer eine URL
func (c *Client) RemoveCached(url string) error {
	path := c.CachePath(url)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Remove(path + CacheMetaExt); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ClearCache loescht alle gecachten Configs
func (c *Client) ClearCache() error {
	err := os.RemoveAll(c.CacheDir())
	if errors.Is(err, fs.ErrPermission) {
		return ErrCacheAccessDenied
	}
	return err
}

// store schreibt den Inhalt atomar in den Cache und legt die Metadaten daneben
func (c *Client) store(url, etag string, write func(f *os.File) error) (string, error) {
	target := c.CachePath(url)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("verzeichnis erstellen fehlgeschlagen: %w", err)
	}

	if err := writeAtomic(target, write); err != nil {
		return "", err
	}

	meta, err := json.Marshal(CacheEntry{URL: url, ETag: etag, FetchedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}
	if err := writeAtomic(target+CacheMetaExt, func(f *os.File) error {
		_, err := f.Write(meta)
		return err
	}); err != nil {
		return "", err
	}

	return target, nil
}

// writeAtomic schreibt ueber eine temporaere Datei und benennt sie danach um
func writeAtomic(target string, write func(f *os.File) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(target), cacheTmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("temp-datei erstellen fehlgeschlagen: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := write(tmpFile); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("datei schliessen fehlgeschlagen: %w", err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("datei umbenennen fehlgeschlagen: %w", err)
	}
	return nil
}

func urlToFilename(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
