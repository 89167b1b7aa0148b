package unilm

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fastseq/fastseq/pretrained"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	c, err := New(30522)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := map[string]any{
		"model_type":                   ModelType,
		"num_labels":                   pretrained.DefaultNumLabels,
		"output_attentions":            false,
		"output_hidden_states":         false,
		"torchscript":                  false,
		"is_decoder":                   false,
		"is_encoder_decoder":           false,
		"bos_token_id":                 101,
		"eos_token_id":                 102,
		"pad_token_id":                 0,
		"vocab_size":                   30522,
		"hidden_size":                  768,
		"num_hidden_layers":            12,
		"num_attention_heads":          12,
		"intermediate_size":            3072,
		"hidden_act":                   "gelu",
		"hidden_dropout_prob":          0.1,
		"attention_probs_dropout_prob": 0.1,
		"max_position_embeddings":      512,
		"type_vocab_size":              6,
		"initializer_range":            0.02,
		"layer_norm_eps":               1e-12,
		"source_type_id":               0,
		"target_type_id":               1,
		"mask_token_id":                103,
	}
	if diff := cmp.Diff(want, c.Dict()); diff != "" {
		t.Errorf("Dict() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewOptions(t *testing.T) {
	c, err := New(100,
		WithHiddenSize(1024),
		WithNumHiddenLayers(24),
		WithNumAttentionHeads(16),
		WithIntermediateSize(4096),
		WithHiddenAct(ActGELUNew),
		WithHiddenDropoutProb(0.2),
		WithAttentionProbsDropoutProb(0.3),
		WithMaxPositionEmbeddings(1024),
		WithTypeVocabSize(2),
		WithInitializerRange(0.01),
		WithLayerNormEps(1e-5),
		WithSourceTypeID(4),
		WithTargetTypeID(5),
		WithBosTokenID(1),
		WithEosTokenID(2),
		WithPadTokenID(3),
		WithMaskTokenID(4),
		WithBaseOptions(pretrained.WithArchitectures("UnilmForSeq2Seq"), pretrained.WithExtra("label_smoothing", 0.1)),
	)
	if err != nil {
		t.Fatal(err)
	}

	if c.VocabSize != 100 || c.HiddenSize != 1024 || c.NumHiddenLayers != 24 || c.NumAttentionHeads != 16 ||
		c.IntermediateSize != 4096 || c.HiddenAct != ActGELUNew || c.HiddenDropoutProb != 0.2 ||
		c.AttentionProbsDropoutProb != 0.3 || c.MaxPositionEmbeddings != 1024 || c.TypeVocabSize != 2 ||
		c.InitializerRange != 0.01 || c.LayerNormEps != 1e-5 || c.SourceTypeID != 4 || c.TargetTypeID != 5 {
		t.Errorf("hyperparameter nicht uebernommen: %+v", c)
	}
	if *c.BosTokenID != 1 || *c.EosTokenID != 2 || *c.PadTokenID != 3 || c.MaskTokenID != 4 {
		t.Errorf("token ids = %d %d %d %d", *c.BosTokenID, *c.EosTokenID, *c.PadTokenID, c.MaskTokenID)
	}
	if diff := cmp.Diff([]string{"UnilmForSeq2Seq"}, c.Architectures); diff != "" {
		t.Errorf("Architectures mismatch:\n%s", diff)
	}
	if v, ok := c.Get("label_smoothing"); !ok || v != 0.1 {
		t.Errorf("label_smoothing = %v, %v", v, ok)
	}
}

func TestNewBaseOptionsOverrideTokenIDs(t *testing.T) {
	c, err := New(10, WithPadTokenID(3), WithBaseOptions(pretrained.WithTokenIDs(7, 8, 9)))
	if err != nil {
		t.Fatal(err)
	}
	if *c.BosTokenID != 7 || *c.EosTokenID != 8 || *c.PadTokenID != 9 {
		t.Errorf("token ids = %d %d %d", *c.BosTokenID, *c.EosTokenID, *c.PadTokenID)
	}
}

func TestNewInvalidVocabSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New(n); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("New(%d) error = %v, want ErrInvalidArgument", n, err)
		}
	}
}

func TestNewIsDeterministic(t *testing.T) {
	opts := []Option{WithHiddenSize(512), WithPadTokenID(1), WithBaseOptions(pretrained.WithExtra("k", "v"))}
	a, err := New(1000, opts...)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(1000, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Dict(), b.Dict()); diff != "" {
		t.Errorf("records differ (-a +b):\n%s", diff)
	}
}

func TestFromJSONFile(t *testing.T) {
	path := writeConfig(t, `{"hidden_size": 1024, "vocab_size": 30000}`)

	c, err := FromJSONFile(path)
	if err != nil {
		t.Fatalf("FromJSONFile() error = %v", err)
	}
	if c.HiddenSize != 1024 || c.VocabSize != 30000 {
		t.Errorf("HiddenSize = %d, VocabSize = %d", c.HiddenSize, c.VocabSize)
	}

	def := Default()
	if c.NumHiddenLayers != def.NumHiddenLayers || c.IntermediateSize != def.IntermediateSize ||
		c.LayerNormEps != def.LayerNormEps || c.MaskTokenID != DefaultMaskTokenID || *c.PadTokenID != DefaultPadTokenID {
		t.Errorf("defaults nicht erhalten: %+v", c)
	}
	if c.Extras.Len() != 0 {
		t.Errorf("unerwartete extras: %d", c.Extras.Len())
	}
}

func TestFromJSONFileKeepsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{
		"architectures": ["UnilmForSeq2SeqDecode"],
		"model_type": "unilm",
		"hidden_size": 768,
		"label_smoothing": 0.1,
		"ffn_type": 0,
		"rel_pos_bins": {"bins": 32},
		"pad_token_id": 3,
		"mask_token_id": 4
	}`)

	c, err := FromJSONFile(path, WithBosTokenID(11))
	if err != nil {
		t.Fatal(err)
	}

	if *c.PadTokenID != 3 || c.MaskTokenID != 4 || *c.BosTokenID != 11 {
		t.Errorf("token ids = pad %d mask %d bos %d", *c.PadTokenID, c.MaskTokenID, *c.BosTokenID)
	}

	var keys []string
	for pair := c.Extras.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	if diff := cmp.Diff([]string{"label_smoothing", "ffn_type", "rel_pos_bins"}, keys); diff != "" {
		t.Errorf("extras keys mismatch:\n%s", diff)
	}
	if v, _ := c.Get("rel_pos_bins"); cmp.Diff(map[string]any{"bins": float64(32)}, v) != "" {
		t.Errorf("rel_pos_bins = %v", v)
	}
}

func TestFromJSONFileErrors(t *testing.T) {
	t.Run("fehlende datei", func(t *testing.T) {
		_, err := FromJSONFile(filepath.Join(t.TempDir(), "missing.json"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("err = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("kaputtes json", func(t *testing.T) {
		_, err := FromJSONFile(writeConfig(t, `{"hidden_size": `))
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("err = %v, want *json.SyntaxError", err)
		}
	})

	t.Run("kein objekt", func(t *testing.T) {
		_, err := FromJSONFile(writeConfig(t, `[768]`))
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			t.Errorf("err = %v, want *json.UnmarshalTypeError", err)
		}
	})

	t.Run("falscher typ", func(t *testing.T) {
		_, err := FromJSONFile(writeConfig(t, `{"num_hidden_layers": "zwoelf"}`))
		if !errors.Is(err, pretrained.ErrInvalidConfig) {
			t.Errorf("err = %v, want pretrained.ErrInvalidConfig", err)
		}
	})
}

func TestJSONRoundTrip(t *testing.T) {
	c, err := New(50000, WithHiddenSize(256), WithBaseOptions(pretrained.WithExtra("beam", 5.0)))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := c.WriteJSONFile(path); err != nil {
		t.Fatalf("WriteJSONFile() error = %v", err)
	}

	loaded, err := FromJSONFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c.Dict(), loaded.Dict()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONRoundTripNullTokenID(t *testing.T) {
	c, err := FromJSONFile(writeConfig(t, `{"bos_token_id": null, "pad_token_id": 5}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.BosTokenID != nil {
		t.Fatalf("BosTokenID = %d, want nil", *c.BosTokenID)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := c.WriteJSONFile(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := FromJSONFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.BosTokenID != nil {
		t.Errorf("BosTokenID = %d nach round trip, want nil", *loaded.BosTokenID)
	}
	if loaded.PadTokenID == nil || *loaded.PadTokenID != 5 {
		t.Errorf("PadTokenID = %v, want 5", loaded.PadTokenID)
	}
	if diff := cmp.Diff(c.Dict(), loaded.Dict()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSetGet(t *testing.T) {
	c := Default()
	if err := c.Set("hidden_size", 128); err != nil {
		t.Fatal(err)
	}
	if c.HiddenSize != 128 {
		t.Errorf("HiddenSize = %d, want 128", c.HiddenSize)
	}
	if err := c.Set("bos_token_id", 5); err != nil || *c.BosTokenID != 5 {
		t.Errorf("bos_token_id = %v, err %v", c.BosTokenID, err)
	}
	if err := c.Set("decoder_layers", 6); err != nil {
		t.Fatal(err)
	}
	if v, ok := c.Get("decoder_layers"); !ok || v != 6 {
		t.Errorf("decoder_layers = %v, %v", v, ok)
	}
	if err := c.Set("hidden_dropout_prob", "hoch"); !errors.Is(err, pretrained.ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}
}

func TestClone(t *testing.T) {
	c := Default()
	clone := c.Clone()
	clone.HiddenSize = 1
	*clone.PadTokenID = 9
	clone.Set("x", 1)

	if c.HiddenSize != DefaultHiddenSize || *c.PadTokenID != DefaultPadTokenID {
		t.Error("clone teilt Zustand mit dem Original")
	}
	if _, ok := c.Get("x"); ok {
		t.Error("clone teilt Extras mit dem Original")
	}
}

func TestString(t *testing.T) {
	s := Default().String()
	if !strings.HasPrefix(s, "UnilmConfig {") || !strings.Contains(s, `"vocab_size":28996`) {
		t.Errorf("String() = %s", s)
	}
}

func TestToJSONStringOrder(t *testing.T) {
	s, err := Default().ToJSONString(false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(s, `"model_type"`) > strings.Index(s, `"vocab_size"`) {
		t.Error("basis-felder sollten vor den unilm-feldern stehen")
	}
	if strings.Index(s, `"vocab_size"`) > strings.Index(s, `"mask_token_id"`) {
		t.Error("vocab_size sollte vor mask_token_id stehen")
	}
}
