// Package pretrained stellt die gemeinsame Basis fuer Modell-Konfigurationen bereit:
// allgemeine Felder, eine Extras-Tabelle fuer unbekannte Schluessel, JSON-Kodierung
// und das Aufloesen von Namen, Pfaden und URLs zu lokalen config.json Dateien.
package pretrained

import (
	"encoding/json"
	"log/slog"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/mod/semver"
)

// SupportedTransformersMajor ist die neueste Hauptversion, deren Configs bekannt sind
const SupportedTransformersMajor = "v4"

// DefaultNumLabels entspricht dem Standard der transformers-Bibliothek
const DefaultNumLabels = 2

// Config enthaelt die Felder, die jede vortrainierte Konfiguration teilt
type Config struct {
	Architectures       []string
	ModelType           string
	FinetuningTask      string
	NumLabels           int
	OutputAttentions    bool
	OutputHiddenStates  bool
	Torchscript         bool
	IsDecoder           bool
	IsEncoderDecoder    bool
	TransformersVersion string

	BosTokenID *int
	EosTokenID *int
	PadTokenID *int

	// Extras haelt alle Schluessel ohne typisiertes Feld
	Extras *Extras
}

// Option konfiguriert die Basis-Konfiguration
type Option func(*Config)

// WithArchitectures setzt die Architektur-Namen
func WithArchitectures(archs ...string) Option {
	return func(c *Config) { c.Architectures = archs }
}

// WithModelType setzt den model_type
func WithModelType(t string) Option {
	return func(c *Config) { c.ModelType = t }
}

// WithFinetuningTask setzt den finetuning_task
func WithFinetuningTask(task string) Option {
	return func(c *Config) { c.FinetuningTask = task }
}

// WithNumLabels setzt num_labels
func WithNumLabels(n int) Option {
	return func(c *Config) { c.NumLabels = n }
}

// WithOutputAttentions aktiviert output_attentions
func WithOutputAttentions(b bool) Option {
	return func(c *Config) { c.OutputAttentions = b }
}

// WithOutputHiddenStates aktiviert output_hidden_states
func WithOutputHiddenStates(b bool) Option {
	return func(c *Config) { c.OutputHiddenStates = b }
}

// WithIsDecoder setzt is_decoder
func WithIsDecoder(b bool) Option {
	return func(c *Config) { c.IsDecoder = b }
}

// WithTokenIDs setzt bos/eos/pad Token-IDs
func WithTokenIDs(bos, eos, pad int) Option {
	return func(c *Config) {
		c.BosTokenID, c.EosTokenID, c.PadTokenID = &bos, &eos, &pad
	}
}

// WithExtra setzt einen beliebigen zusaetzlichen Schluessel
func WithExtra(key string, value any) Option {
	return func(c *Config) {
		if c.Extras == nil {
			c.Extras = NewExtras()
		}
		c.Extras.Set(key, value)
	}
}

// NewConfig erstellt eine Basis-Konfiguration mit Standardwerten
func NewConfig(opts ...Option) *Config {
	c := &Config{}
	c.Init(opts...)
	return c
}

// Init setzt Standardwerte und wendet die Optionen an.
// Fuer eingebettete Basis-Konfigurationen gedacht.
func (c *Config) Init(opts ...Option) {
	c.NumLabels = DefaultNumLabels
	c.Extras = NewExtras()
	for _, opt := range opts {
		opt(c)
	}
}

// Fields gibt die typisierten Basis-Felder in Ausgabe-Reihenfolge zurueck
func (c *Config) Fields() []Field {
	return []Field{
		StringsField("architectures", &c.Architectures),
		StringField("model_type", &c.ModelType, false),
		StringField("finetuning_task", &c.FinetuningTask, true),
		IntField("num_labels", &c.NumLabels),
		BoolField("output_attentions", &c.OutputAttentions),
		BoolField("output_hidden_states", &c.OutputHiddenStates),
		BoolField("torchscript", &c.Torchscript),
		BoolField("is_decoder", &c.IsDecoder),
		BoolField("is_encoder_decoder", &c.IsEncoderDecoder),
		StringField("transformers_version", &c.TransformersVersion, true),
		IntPtrField("bos_token_id", &c.BosTokenID),
		IntPtrField("eos_token_id", &c.EosTokenID),
		IntPtrField("pad_token_id", &c.PadTokenID),
	}
}

// Set setzt einen zusaetzlichen Schluessel. Bekannte Basis-Schluessel werden typisiert gesetzt.
func (c *Config) Set(key string, value any) error {
	if c.Extras == nil {
		c.Extras = NewExtras()
	}
	return SetField(c.Fields(), c.Extras, key, value)
}

// Get liest einen Schluessel aus Basis-Feldern oder Extras
func (c *Config) Get(key string) (any, bool) {
	return GetField(c.Fields(), c.Extras, key)
}

// UnmarshalJSON ueberlagert die Konfiguration mit einem JSON-Objekt
func (c *Config) UnmarshalJSON(data []byte) error {
	if c.Extras == nil {
		c.Extras = NewExtras()
	}
	return Apply(c.Fields(), c.Extras, data)
}

// MarshalJSON erzeugt ein flaches JSON-Objekt
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(Flatten(c.Fields(), c.Extras))
}

// CloneBase kopiert die Basis-Felder tief
func (c *Config) CloneBase() Config {
	out := *c
	out.Architectures = append([]string(nil), c.Architectures...)
	out.BosTokenID = clonePtr(c.BosTokenID)
	out.EosTokenID = clonePtr(c.EosTokenID)
	out.PadTokenID = clonePtr(c.PadTokenID)
	out.Extras = NewExtras()
	if c.Extras != nil {
		for pair := c.Extras.Oldest(); pair != nil; pair = pair.Next() {
			out.Extras.Set(pair.Key, pair.Value)
		}
	}
	return out
}

// CheckVersion warnt, wenn die Config mit einer neueren transformers-Hauptversion
// erzeugt wurde. Gibt true zurueck wenn die Version neuer ist.
func (c *Config) CheckVersion() bool {
	return checkTransformersVersion(c.TransformersVersion)
}

func checkTransformersVersion(v string) bool {
	if v == "" {
		return false
	}
	canonical := semver.Canonical("v" + strings.TrimPrefix(v, "v"))
	if canonical == "" {
		slog.Debug("unparseable transformers_version", "version", v)
		return false
	}
	if semver.Compare(semver.Major(canonical), SupportedTransformersMajor) > 0 {
		slog.Warn("config written by a newer transformers release", "version", v, "supported", SupportedTransformersMajor)
		return true
	}
	return false
}

// Dict gibt eine flache Sicht auf eine geordnete Map als normale Map zurueck
func Dict(om *orderedmap.OrderedMap[string, any]) map[string]any {
	out := make(map[string]any, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
