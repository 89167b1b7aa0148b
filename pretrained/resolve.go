// resolve.go - Aufloesen von Namen, Pfaden und URLs zu lokalen config.json Dateien
//
// Reihenfolge:
// 1. Existierendes Verzeichnis -> <dir>/config.json
// 2. Existierende Datei -> die Datei selbst
// 3. http(s)-URL -> Download in den Cache
// 4. Hub Model-ID (owner/name oder name) -> <endpoint>/<id>/resolve/<revision>/config.json
package pretrained

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ConfigName ist der Standard-Dateiname einer Konfiguration
const ConfigName = "config.json"

var modelIDPattern = regexp.MustCompile(`^[A-Za-z0-9][\w.\-]*(/[A-Za-z0-9][\w.\-]*)?$`)

// Loader loest Namen oder Pfade zu lokalen Konfigurationsdateien auf
type Loader struct {
	client     *Client
	revision   string
	configName string
	force      bool
}

// LoadOption konfiguriert einen Loader
type LoadOption func(*Loader)

// WithClient setzt den HTTP-Client fuer Downloads
func WithClient(c *Client) LoadOption {
	return func(l *Loader) { l.client = c }
}

// WithRevision setzt die Hub-Revision (Branch, Tag oder Commit)
func WithRevision(rev string) LoadOption {
	return func(l *Loader) { l.revision = rev }
}

// WithConfigName setzt den Dateinamen innerhalb von Verzeichnissen und Hub-Repositories
func WithConfigName(name string) LoadOption {
	return func(l *Loader) { l.configName = name }
}

// WithForceDownload ignoriert vorhandene Cache-Eintraege
func WithForceDownload(force bool) LoadOption {
	return func(l *Loader) { l.force = force }
}

// NewLoader erstellt einen Loader. Ohne WithClient wird NewClient() verwendet.
func NewLoader(opts ...LoadOption) *Loader {
	l := &Loader{revision: DefaultRevision, configName: ConfigName}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = NewClient()
	}
	return l
}

// Client gibt den verwendeten HTTP-Client zurueck
func (l *Loader) Client() *Client { return l.client }

// Resolve gibt den lokalen Pfad der Konfiguration fuer nameOrPath zurueck
func (l *Loader) Resolve(ctx context.Context, nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", &Error{Op: "resolve", Err: fmt.Errorf("%w: name darf nicht leer sein", ErrInvalidModelID)}
	}

	if stat, err := os.Stat(nameOrPath); err == nil {
		if !stat.IsDir() {
			return nameOrPath, nil
		}
		path := filepath.Join(nameOrPath, l.configName)
		if _, err := os.Stat(path); err != nil {
			return "", &Error{Op: "resolve", Name: nameOrPath, Err: fmt.Errorf("%w: %w", ErrConfigNotFound, err)}
		}
		return path, nil
	}

	if IsURL(nameOrPath) {
		slog.Debug("resolving config url", "url", nameOrPath)
		return l.client.Fetch(ctx, nameOrPath, l.force)
	}

	if looksLikePath(nameOrPath) {
		return "", &Error{Op: "resolve", Name: nameOrPath, Err: fmt.Errorf("%w: %w", ErrConfigNotFound, fs.ErrNotExist)}
	}

	if !modelIDPattern.MatchString(nameOrPath) || strings.Contains(nameOrPath, "..") {
		return "", &Error{Op: "resolve", Name: nameOrPath, Err: fmt.Errorf("%w: erwartet format 'owner/model' oder 'model'", ErrInvalidModelID)}
	}

	url := l.client.HubURL(nameOrPath, l.revision, l.configName)
	slog.Debug("resolving hub model", "model", nameOrPath, "url", url)
	return l.client.Fetch(ctx, url, l.force)
}

// LoadDict loest nameOrPath auf und dekodiert das JSON-Objekt in Schluessel-Reihenfolge
func (l *Loader) LoadDict(ctx context.Context, nameOrPath string) (*orderedmap.OrderedMap[string, any], error) {
	path, err := l.Resolve(ctx, nameOrPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "read", Name: path, Err: err}
	}

	dict := NewExtras()
	if err := Apply(nil, dict, data); err != nil {
		return nil, &Error{Op: "decode", Name: path, Err: err}
	}

	if v, ok := dict.Get("transformers_version"); ok {
		if s, ok := v.(string); ok {
			checkTransformersVersion(s)
		}
	}

	return dict, nil
}

// IsURL prueft ob s eine http(s)-URL ist
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsNotFound prueft ob err auf eine fehlende Konfiguration zurueckgeht
func IsNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrConfigNotFound) || errors.Is(err, fs.ErrNotExist)
}

func looksLikePath(s string) bool {
	return filepath.IsAbs(s) ||
		strings.HasPrefix(s, "."+string(filepath.Separator)) ||
		strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../") ||
		strings.HasPrefix(s, "~") ||
		strings.HasSuffix(s, ".json")
}
