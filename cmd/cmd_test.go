package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastseq/fastseq/pretrained"
	"github.com/fastseq/fastseq/server"
	"github.com/fastseq/fastseq/unilm"
	"github.com/fastseq/fastseq/version"
)

// setupEnv leitet Cache und Hub auf temporaere Ziele um
func setupEnv(t *testing.T, hub http.HandlerFunc) string {
	t.Helper()
	if hub == nil {
		hub = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }
	}
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	cache := t.TempDir()
	t.Setenv("FASTSEQ_CACHE", cache)
	t.Setenv("HF_ENDPOINT", srv.URL)
	t.Setenv("HF_HUB_OFFLINE", "")
	t.Setenv("HF_TOKEN", "")
	t.Setenv("FASTSEQ_DEBUG", "")
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI()
	cli.SetArgs(args)
	cli.SetOut(&out)
	cli.SetErr(io.Discard)
	err := cli.ExecuteContext(context.Background())
	return out.String(), err
}

func writeLocalConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, pretrained.ConfigName), []byte(body), 0o644))
	return dir
}

func TestVersion(t *testing.T) {
	setupEnv(t, nil)

	t.Run("ohne server", func(t *testing.T) {
		t.Setenv("FASTSEQ_HOST", "127.0.0.1:1")
		out, err := run(t, "--version")
		require.NoError(t, err)
		assert.Equal(t, "fastseq version is "+version.Version+"\n", out)
	})

	t.Run("mit server", func(t *testing.T) {
		srv := httptest.NewServer(server.NewServer(nil).GenerateRoutes())
		defer srv.Close()
		t.Setenv("FASTSEQ_HOST", srv.URL)

		out, err := run(t, "-v")
		require.NoError(t, err)
		assert.Equal(t, "fastseq server version is "+version.Version+"\nfastseq version is "+version.Version+"\n", out)
	})
}

func TestShowFormats(t *testing.T) {
	setupEnv(t, nil)
	dir := writeLocalConfig(t, `{"hidden_size": 1024, "label_smoothing": 0.1, "rel_pos": [1, 2, 3]}`)

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "show", dir, "--format", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"hidden_size": 1024`)
		assert.Contains(t, out, `"label_smoothing": 0.1`)

		cfg, err := unilm.FromJSON([]byte(out))
		require.NoError(t, err)
		assert.Equal(t, 1024, cfg.HiddenSize)
	})

	t.Run("json ohne terminal", func(t *testing.T) {
		out, err := run(t, "show", dir)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "{"), out)
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := run(t, "show", dir, "-f", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "hidden_size: 1024\n")
		assert.Contains(t, out, "model_type: unilm\n")
		assert.Less(t, strings.Index(out, "model_type:"), strings.Index(out, "vocab_size:"))
		assert.Less(t, strings.Index(out, "mask_token_id:"), strings.Index(out, "label_smoothing:"))
	})

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "show", dir, "--format", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "Model")
		assert.Contains(t, out, "hidden size")
		assert.Contains(t, out, "1024")
		assert.Contains(t, out, "Extras")
		assert.Contains(t, out, "label_smoothing")
	})

	t.Run("unbekanntes format", func(t *testing.T) {
		_, err := run(t, "show", dir, "--format", "xml")
		assert.ErrorContains(t, err, "xml")
	})
}

func TestShowHub(t *testing.T) {
	var hits atomic.Int32
	setupEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/owner/model/resolve/main/config.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		w.Write([]byte(`{"hidden_size": 384, "num_attention_heads": 6}`))
	})

	out, err := run(t, "show", "owner/model", "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"hidden_size": 384`)

	t.Run("offline aus dem cache", func(t *testing.T) {
		before := hits.Load()
		out, err := run(t, "show", "owner/model", "-f", "json", "--offline")
		require.NoError(t, err)
		assert.Contains(t, out, `"hidden_size": 384`)
		assert.Equal(t, before, hits.Load())
	})

	t.Run("offline ohne cache", func(t *testing.T) {
		_, err := run(t, "show", "owner/other", "--offline")
		assert.ErrorIs(t, err, pretrained.ErrOffline)
	})

	t.Run("nicht gefunden", func(t *testing.T) {
		_, err := run(t, "show", "owner/missing")
		assert.ErrorIs(t, err, pretrained.ErrModelNotFound)
	})

	t.Run("vorschlag", func(t *testing.T) {
		_, err := run(t, "show", "unilm-base-case")
		assert.ErrorIs(t, err, pretrained.ErrModelNotFound)
		assert.ErrorContains(t, err, `Did you mean "unilm-base-cased"?`)
	})

	t.Run("revision", func(t *testing.T) {
		_, err := run(t, "show", "owner/model", "--revision", "v1")
		assert.ErrorIs(t, err, pretrained.ErrModelNotFound)
	})
}

func TestResolve(t *testing.T) {
	setupEnv(t, nil)
	out, err := run(t, "resolve", "unilm-base-cased", "owner/model")
	require.NoError(t, err)
	assert.Equal(t, unilm.ArchiveMap["unilm-base-cased"]+"\nowner/model\n", out)
}

func TestList(t *testing.T) {
	setupEnv(t, nil)

	out, err := run(t, "list")
	require.NoError(t, err)
	for _, name := range unilm.KnownNames() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "NAME")

	out, err = run(t, "ls", "unilm1")
	require.NoError(t, err)
	assert.Contains(t, out, "unilm1-base-cased")
	assert.NotContains(t, out, "cnndm-unilm-base-cased")
}

func TestValidate(t *testing.T) {
	setupEnv(t, nil)

	out, err := run(t, "validate", writeLocalConfig(t, `{"hidden_size": 1024, "num_attention_heads": 16}`))
	require.NoError(t, err)
	assert.Contains(t, out, ": ok")

	_, err = run(t, "validate", writeLocalConfig(t, `{"hidden_size": 1000, "num_attention_heads": 16}`))
	assert.ErrorIs(t, err, unilm.ErrInvalidConfig)
}

func TestPullAndCache(t *testing.T) {
	url := setupEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a/one/resolve/main/config.json", "/b/two/resolve/main/config.json", "/a/one/resolve/v2/config.json":
			w.Header().Set("ETag", `"e1"`)
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	t.Run("ohne namen", func(t *testing.T) {
		_, err := run(t, "pull")
		assert.Error(t, err)
	})

	out, err := run(t, "pull", "a/one", "b/two", "--parallel", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "pulled a/one")
	assert.Contains(t, out, "pulled b/two")

	_, err = run(t, "pull", "a/one", "c/missing")
	assert.ErrorIs(t, err, pretrained.ErrModelNotFound)

	out, err = run(t, "cache", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, url+"/a/one/resolve/main/config.json")
	assert.Contains(t, out, url+"/b/two/resolve/main/config.json")
	assert.Contains(t, out, `"e1"`)

	out, err = run(t, "cache", "dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("FASTSEQ_CACHE"), pretrained.CacheSubdir)+"\n", out)

	out, err = run(t, "cache", "rm", "a/one")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+url+"/a/one/resolve/main/config.json")

	_, err = run(t, "cache", "rm", "a/one")
	assert.ErrorContains(t, err, "not cached")

	_, err = run(t, "pull", "a/one", "--revision", "v2")
	require.NoError(t, err)
	_, err = run(t, "cache", "rm", "a/one")
	assert.ErrorContains(t, err, "not cached")
	out, err = run(t, "cache", "rm", "a/one", "--revision", "v2")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+url+"/a/one/resolve/v2/config.json")

	_, err = run(t, "cache", "rm")
	require.NoError(t, err)

	out, err = run(t, "cache", "ls")
	require.NoError(t, err)
	assert.NotContains(t, out, url)
}

func TestAppendEnvDocs(t *testing.T) {
	setupEnv(t, nil)
	cli := NewCLI()
	show, _, err := cli.Find([]string{"show"})
	require.NoError(t, err)
	assert.Contains(t, show.UsageString(), "Environment Variables:")
	assert.Contains(t, show.UsageString(), "HF_ENDPOINT")

	serve, _, err := cli.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Contains(t, serve.UsageString(), "FASTSEQ_ORIGINS")
}
