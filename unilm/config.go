// Package unilm enthaelt die Konfiguration des UniLM Transformer-Modells.
//
// Eine Config entsteht auf genau einem von drei Wegen:
//   - New(vocabSize, ...) aus Standardwerten und Optionen
//   - FromJSONFile(path, ...) aus einer lokalen JSON-Datei
//   - FromPretrained(ctx, name, ...) ueber die Registry bzw. den pretrained.Loader
package unilm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fastseq/fastseq/pretrained"
)

// ModelType ist der model_type Eintrag fuer UniLM
const ModelType = "unilm"

// Aktivierungsfunktionen, die das Modell kennt. Die Liste ist offen.
const (
	ActGELU    = "gelu"
	ActReLU    = "relu"
	ActSwish   = "swish"
	ActGELUNew = "gelu_new"
)

// Standardwerte
const (
	DefaultVocabSize                 = 28996
	DefaultHiddenSize                = 768
	DefaultNumHiddenLayers           = 12
	DefaultNumAttentionHeads         = 12
	DefaultIntermediateSize          = 3072
	DefaultHiddenAct                 = ActGELU
	DefaultHiddenDropoutProb         = 0.1
	DefaultAttentionProbsDropoutProb = 0.1
	DefaultMaxPositionEmbeddings     = 512
	DefaultTypeVocabSize             = 6
	DefaultInitializerRange          = 0.02
	DefaultLayerNormEps              = 1e-12
	DefaultSourceTypeID              = 0
	DefaultTargetTypeID              = 1
	DefaultBosTokenID                = 101
	DefaultMaskTokenID               = 103
	DefaultEosTokenID                = 102
	DefaultPadTokenID                = 0
)

// ErrInvalidArgument wird bei einer ungueltigen Vokabulargroesse zurueckgegeben
var ErrInvalidArgument = errors.New("vokabulargroesse muss eine positive ganzzahl sein")

// Config speichert die Hyperparameter eines UniLM-Modells.
// Token-IDs bos/eos/pad liegen in der eingebetteten Basis-Konfiguration.
type Config struct {
	pretrained.Config

	VocabSize                 int
	HiddenSize                int
	NumHiddenLayers           int
	NumAttentionHeads         int
	IntermediateSize          int
	HiddenAct                 string
	HiddenDropoutProb         float64
	AttentionProbsDropoutProb float64
	MaxPositionEmbeddings     int
	TypeVocabSize             int
	InitializerRange          float64
	LayerNormEps              float64
	SourceTypeID              int
	TargetTypeID              int
	MaskTokenID               int
}

// Option setzt einen benannten Hyperparameter.
// Optionen werden in Aufruf-Reihenfolge angewendet, die letzte gewinnt.
type Option func(*Config)

func defaults() *Config {
	c := &Config{
		VocabSize:                 DefaultVocabSize,
		HiddenSize:                DefaultHiddenSize,
		NumHiddenLayers:           DefaultNumHiddenLayers,
		NumAttentionHeads:         DefaultNumAttentionHeads,
		IntermediateSize:          DefaultIntermediateSize,
		HiddenAct:                 DefaultHiddenAct,
		HiddenDropoutProb:         DefaultHiddenDropoutProb,
		AttentionProbsDropoutProb: DefaultAttentionProbsDropoutProb,
		MaxPositionEmbeddings:     DefaultMaxPositionEmbeddings,
		TypeVocabSize:             DefaultTypeVocabSize,
		InitializerRange:          DefaultInitializerRange,
		LayerNormEps:              DefaultLayerNormEps,
		SourceTypeID:              DefaultSourceTypeID,
		TargetTypeID:              DefaultTargetTypeID,
		MaskTokenID:               DefaultMaskTokenID,
	}
	c.Config.Init(
		pretrained.WithModelType(ModelType),
		pretrained.WithTokenIDs(DefaultBosTokenID, DefaultEosTokenID, DefaultPadTokenID),
	)
	return c
}

func WithHiddenSize(n int) Option        { return func(c *Config) { c.HiddenSize = n } }
func WithNumHiddenLayers(n int) Option   { return func(c *Config) { c.NumHiddenLayers = n } }
func WithNumAttentionHeads(n int) Option { return func(c *Config) { c.NumAttentionHeads = n } }
func WithIntermediateSize(n int) Option  { return func(c *Config) { c.IntermediateSize = n } }
func WithHiddenAct(act string) Option    { return func(c *Config) { c.HiddenAct = act } }
func WithHiddenDropoutProb(p float64) Option {
	return func(c *Config) { c.HiddenDropoutProb = p }
}
func WithAttentionProbsDropoutProb(p float64) Option {
	return func(c *Config) { c.AttentionProbsDropoutProb = p }
}
func WithMaxPositionEmbeddings(n int) Option {
	return func(c *Config) { c.MaxPositionEmbeddings = n }
}
func WithTypeVocabSize(n int) Option { return func(c *Config) { c.TypeVocabSize = n } }
func WithInitializerRange(r float64) Option {
	return func(c *Config) { c.InitializerRange = r }
}
func WithLayerNormEps(eps float64) Option { return func(c *Config) { c.LayerNormEps = eps } }
func WithSourceTypeID(id int) Option      { return func(c *Config) { c.SourceTypeID = id } }
func WithTargetTypeID(id int) Option      { return func(c *Config) { c.TargetTypeID = id } }
func WithBosTokenID(id int) Option        { return func(c *Config) { c.BosTokenID = &id } }
func WithMaskTokenID(id int) Option       { return func(c *Config) { c.MaskTokenID = id } }
func WithEosTokenID(id int) Option        { return func(c *Config) { c.EosTokenID = &id } }
func WithPadTokenID(id int) Option        { return func(c *Config) { c.PadTokenID = &id } }

// WithBaseOptions reicht Optionen unveraendert an die Basis-Konfiguration weiter
func WithBaseOptions(opts ...pretrained.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}

// apply wendet opts auf eine bestehende Config an
func (c *Config) apply(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// build erzeugt die Config aus Standardwerten und Optionen
func build(opts []Option) *Config {
	c := defaults()
	c.apply(opts)
	return c
}

// New erstellt eine Config mit der angegebenen Vokabulargroesse.
// Alle anderen Hyperparameter kommen aus Optionen oder Standardwerten.
func New(vocabSize int, opts ...Option) (*Config, error) {
	if vocabSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidArgument, vocabSize)
	}
	c := build(opts)
	c.VocabSize = vocabSize
	return c, nil
}

// Default erstellt eine Config mit allen Standardwerten
func Default() *Config {
	return build(nil)
}

// FromJSON erstellt eine Config aus einem JSON-Objekt.
// Jeder Schluessel des Objekts ueberschreibt den Standardwert bzw. die Option,
// unbekannte Schluessel landen in Extras.
func FromJSON(data []byte, opts ...Option) (*Config, error) {
	c := build(opts)
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	c.CheckVersion()
	return c, nil
}

// FromJSONFile liest eine JSON-Datei und erstellt daraus eine Config.
// Lese- und Parse-Fehler werden mit dem Pfad umschlossen weitergereicht.
func FromJSONFile(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config lesen %q: %w", path, err)
	}

	c, err := FromJSON(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("config parsen %q: %w", path, err)
	}
	return c, nil
}

// Fields gibt alle typisierten Felder in Ausgabe-Reihenfolge zurueck
func (c *Config) Fields() []pretrained.Field {
	return append(c.Config.Fields(),
		pretrained.IntField("vocab_size", &c.VocabSize),
		pretrained.IntField("hidden_size", &c.HiddenSize),
		pretrained.IntField("num_hidden_layers", &c.NumHiddenLayers),
		pretrained.IntField("num_attention_heads", &c.NumAttentionHeads),
		pretrained.IntField("intermediate_size", &c.IntermediateSize),
		pretrained.StringField("hidden_act", &c.HiddenAct, false),
		pretrained.FloatField("hidden_dropout_prob", &c.HiddenDropoutProb),
		pretrained.FloatField("attention_probs_dropout_prob", &c.AttentionProbsDropoutProb),
		pretrained.IntField("max_position_embeddings", &c.MaxPositionEmbeddings),
		pretrained.IntField("type_vocab_size", &c.TypeVocabSize),
		pretrained.FloatField("initializer_range", &c.InitializerRange),
		pretrained.FloatField("layer_norm_eps", &c.LayerNormEps),
		pretrained.IntField("source_type_id", &c.SourceTypeID),
		pretrained.IntField("target_type_id", &c.TargetTypeID),
		pretrained.IntField("mask_token_id", &c.MaskTokenID),
	)
}

// UnmarshalJSON ueberlagert die Config mit den Schluesseln eines JSON-Objekts
func (c *Config) UnmarshalJSON(data []byte) error {
	if c.Extras == nil {
		c.Extras = pretrained.NewExtras()
	}
	return pretrained.Apply(c.Fields(), c.Extras, data)
}

// MarshalJSON erzeugt ein flaches JSON-Objekt: Basis-Felder, UniLM-Felder, Extras
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(pretrained.Flatten(c.Fields(), c.Extras))
}

// Set setzt einen Schluessel. Bekannte Schluessel werden typisiert gesetzt.
func (c *Config) Set(key string, value any) error {
	if c.Extras == nil {
		c.Extras = pretrained.NewExtras()
	}
	return pretrained.SetField(c.Fields(), c.Extras, key, value)
}

// Get liest einen Schluessel aus den Feldern oder Extras
func (c *Config) Get(key string) (any, bool) {
	return pretrained.GetField(c.Fields(), c.Extras, key)
}

// Dict gibt die flache Sicht als Map zurueck
func (c *Config) Dict() map[string]any {
	return pretrained.Dict(pretrained.Flatten(c.Fields(), c.Extras))
}

// Clone kopiert die Config tief
func (c *Config) Clone() *Config {
	out := *c
	out.Config = c.CloneBase()
	return &out
}

// ToJSONString serialisiert die Config, optional eingerueckt
func (c *Config) ToJSONString(indent bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = json.Marshal(c)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteJSONFile schreibt die Config atomar als eingeruecktes JSON
func (c *Config) WriteJSONFile(path string) error {
	s, err := c.ToJSONString(true)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(s + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// String implementiert fmt.Stringer
func (c *Config) String() string {
	s, err := c.ToJSONString(false)
	if err != nil {
		return fmt.Sprintf("unilm.Config<%v>", err)
	}
	return "UnilmConfig " + s
}
