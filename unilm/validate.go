// validate.go - Plausibilitaetspruefung der Hyperparameter
package unilm

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig markiert jede einzelne Verletzung aus Validate
var ErrInvalidConfig = errors.New("ungueltige unilm config")

// Validate prueft die Hyperparameter und gibt alle Verletzungen gesammelt zurueck.
// Beim Laden wird nicht validiert.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	positive := []struct {
		key string
		v   int
	}{
		{"vocab_size", c.VocabSize},
		{"hidden_size", c.HiddenSize},
		{"num_hidden_layers", c.NumHiddenLayers},
		{"num_attention_heads", c.NumAttentionHeads},
		{"intermediate_size", c.IntermediateSize},
		{"max_position_embeddings", c.MaxPositionEmbeddings},
		{"type_vocab_size", c.TypeVocabSize},
	}
	for _, p := range positive {
		if p.v <= 0 {
			fail("%s muss positiv sein, ist %d", p.key, p.v)
		}
	}

	if c.HiddenSize > 0 && c.NumAttentionHeads > 0 && c.HiddenSize%c.NumAttentionHeads != 0 {
		fail("hidden_size %d ist kein vielfaches von num_attention_heads %d", c.HiddenSize, c.NumAttentionHeads)
	}

	probs := []struct {
		key string
		p   float64
	}{
		{"hidden_dropout_prob", c.HiddenDropoutProb},
		{"attention_probs_dropout_prob", c.AttentionProbsDropoutProb},
	}
	for _, p := range probs {
		if p.p < 0 || p.p >= 1 {
			fail("%s muss in [0,1) liegen, ist %g", p.key, p.p)
		}
	}

	if c.InitializerRange <= 0 {
		fail("initializer_range muss positiv sein, ist %g", c.InitializerRange)
	}
	if c.LayerNormEps <= 0 {
		fail("layer_norm_eps muss positiv sein, ist %g", c.LayerNormEps)
	}
	if c.HiddenAct == "" {
		fail("hidden_act darf nicht leer sein")
	}

	tokens := []struct {
		key string
		id  *int
	}{
		{"bos_token_id", c.BosTokenID},
		{"eos_token_id", c.EosTokenID},
		{"pad_token_id", c.PadTokenID},
		{"mask_token_id", &c.MaskTokenID},
	}
	for _, t := range tokens {
		if t.id == nil || c.VocabSize <= 0 {
			continue
		}
		if *t.id < 0 || *t.id >= c.VocabSize {
			fail("%s %d liegt ausserhalb des vokabulars (%d)", t.key, *t.id, c.VocabSize)
		}
	}

	typeIDs := []struct {
		key string
		id  int
	}{
		{"source_type_id", c.SourceTypeID},
		{"target_type_id", c.TargetTypeID},
	}
	for _, t := range typeIDs {
		if c.TypeVocabSize > 0 && (t.id < 0 || t.id >= c.TypeVocabSize) {
			fail("%s %d liegt ausserhalb von type_vocab_size (%d)", t.key, t.id, c.TypeVocabSize)
		}
	}

	return errors.Join(errs...)
}

// KnownActivation prueft ob act eine der bekannten Aktivierungsfunktionen ist
func KnownActivation(act string) bool {
	switch act {
	case ActGELU, ActReLU, ActSwish, ActGELUNew:
		return true
	}
	return false
}
