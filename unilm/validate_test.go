package unilm

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg []string
	}{
		{"defaults", func(*Config) {}, nil},
		{"hidden size nicht teilbar", func(c *Config) { c.NumAttentionHeads = 7 }, []string{"num_attention_heads 7"}},
		{"dropout zu gross", func(c *Config) { c.HiddenDropoutProb = 1 }, []string{"hidden_dropout_prob"}},
		{"negativer dropout", func(c *Config) { c.AttentionProbsDropoutProb = -0.1 }, []string{"attention_probs_dropout_prob"}},
		{"layer norm", func(c *Config) { c.LayerNormEps = 0 }, []string{"layer_norm_eps"}},
		{"initializer", func(c *Config) { c.InitializerRange = -1 }, []string{"initializer_range"}},
		{"mask token", func(c *Config) { c.MaskTokenID = c.VocabSize }, []string{"mask_token_id"}},
		{"target type", func(c *Config) { c.TargetTypeID = 6 }, []string{"target_type_id"}},
		{"leere aktivierung", func(c *Config) { c.HiddenAct = "" }, []string{"hidden_act"}},
		{
			"mehrere fehler",
			func(c *Config) { c.HiddenSize = 0; c.NumHiddenLayers = -1 },
			[]string{"hidden_size muss positiv", "num_hidden_layers muss positiv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if len(tt.wantMsg) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			for _, msg := range tt.wantMsg {
				if !strings.Contains(err.Error(), msg) {
					t.Errorf("Validate() error = %q, should contain %q", err, msg)
				}
			}
		})
	}
}

func TestValidateOrderIsStable(t *testing.T) {
	c := Default()
	c.HiddenDropoutProb = 2
	c.AttentionProbsDropoutProb = 2
	c.BosTokenID = nil
	c.MaskTokenID = -1
	*c.EosTokenID = -1
	*c.PadTokenID = -1
	c.SourceTypeID = -1
	c.TargetTypeID = -1

	want := []string{
		"hidden_dropout_prob",
		"attention_probs_dropout_prob",
		"eos_token_id",
		"pad_token_id",
		"mask_token_id",
		"source_type_id",
		"target_type_id",
	}
	for i := 0; i < 20; i++ {
		lines := strings.Split(c.Validate().Error(), "\n")
		if len(lines) != len(want) {
			t.Fatalf("Validate() = %d fehler, want %d: %q", len(lines), len(want), lines)
		}
		for j, key := range want {
			if !strings.Contains(lines[j], key) {
				t.Fatalf("fehler %d = %q, want %s", j, lines[j], key)
			}
		}
	}
}

func TestKnownActivation(t *testing.T) {
	for _, act := range []string{ActGELU, ActReLU, ActSwish, ActGELUNew} {
		if !KnownActivation(act) {
			t.Errorf("KnownActivation(%q) = false", act)
		}
	}
	if KnownActivation("tanh") {
		t.Error("tanh sollte unbekannt sein")
	}
}
