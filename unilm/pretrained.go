// pretrained.go - Laden einer Config ueber Kurznamen, Hub-ID, URL oder Pfad
package unilm

import (
	"context"
	"log/slog"

	"github.com/fastseq/fastseq/pretrained"
)

// LoadOption konfiguriert FromPretrained
type LoadOption func(*loadConfig)

type loadConfig struct {
	loader      *pretrained.Loader
	loadOptions []pretrained.LoadOption
	options     []Option
}

// WithLoader setzt einen vorkonfigurierten Loader
func WithLoader(l *pretrained.Loader) LoadOption {
	return func(c *loadConfig) { c.loader = l }
}

// WithLoadOptions reicht Optionen an pretrained.NewLoader weiter.
// Wird ignoriert wenn WithLoader gesetzt ist.
func WithLoadOptions(opts ...pretrained.LoadOption) LoadOption {
	return func(c *loadConfig) { c.loadOptions = append(c.loadOptions, opts...) }
}

// WithConfigOptions setzt Optionen fuer die erzeugte Config.
// Sie werden nach der geladenen Datei angewendet und ueberschreiben deren Werte.
func WithConfigOptions(opts ...Option) LoadOption {
	return func(c *loadConfig) { c.options = append(c.options, opts...) }
}

// FromPretrained laedt eine Config. Bekannte Kurznamen werden ueber ArchiveMap
// in ihre URL uebersetzt, alles andere geht unveraendert an den Loader.
func FromPretrained(ctx context.Context, nameOrPath string, opts ...LoadOption) (*Config, error) {
	lc := &loadConfig{}
	for _, opt := range opts {
		opt(lc)
	}
	if lc.loader == nil {
		lc.loader = pretrained.NewLoader(lc.loadOptions...)
	}

	target := ResolveName(nameOrPath)
	if target != nameOrPath {
		slog.Debug("resolved registry name", "name", nameOrPath, "url", target)
	}

	path, err := lc.loader.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	c, err := FromJSONFile(path, lc.options...)
	if err != nil {
		return nil, err
	}
	// Explizite Optionen gewinnen gegen die Schluessel der Datei
	c.apply(lc.options)
	return c, nil
}
