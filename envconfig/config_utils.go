// config_utils.go - Getter-Fabriken und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String: String-Getter
// - Uint: Integer-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
)

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest.
// Nicht parsebare, nicht-leere Werte gelten als true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

var (
	// HubToken ist der Bearer-Token fuer private oder gated Repositories
	HubToken = String("HF_TOKEN")

	// Offline verhindert jeden Netzwerkzugriff, nur der Cache wird gelesen
	Offline = Bool("HF_HUB_OFFLINE")

	// PullParallel begrenzt gleichzeitige Downloads bei "pull --all"
	PullParallel = Uint("FASTSEQ_PULL_PARALLEL", 4)
)

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	ret := map[string]EnvVar{
		"FASTSEQ_DEBUG":            {"FASTSEQ_DEBUG", LogLevel(), "Show additional debug information (e.g. FASTSEQ_DEBUG=1)"},
		"FASTSEQ_HOST":             {"FASTSEQ_HOST", Host(), "IP Address for the config server (default 127.0.0.1:11500)"},
		"FASTSEQ_ORIGINS":          {"FASTSEQ_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"FASTSEQ_CACHE":            {"FASTSEQ_CACHE", CacheDir(), "Directory for downloaded config files"},
		"FASTSEQ_DOWNLOAD_TIMEOUT": {"FASTSEQ_DOWNLOAD_TIMEOUT", DownloadTimeout(), "Timeout for a single config download (default \"5m\")"},
		"FASTSEQ_PULL_PARALLEL":    {"FASTSEQ_PULL_PARALLEL", PullParallel(), "Maximum number of parallel downloads for pull (default 4)"},
		"HF_ENDPOINT":              {"HF_ENDPOINT", HubEndpoint(), "HuggingFace Hub endpoint (default https://huggingface.co)"},
		"HF_HOME":                  {"HF_HOME", HubHome(), "HuggingFace home directory"},
		"HF_HUB_OFFLINE":           {"HF_HUB_OFFLINE", Offline(), "Only use cached config files"},
		"HF_TOKEN":                 {"HF_TOKEN", HubToken() != "", "Access token for the HuggingFace Hub"},

		"HTTP_PROXY":  {"HTTP_PROXY", String("HTTP_PROXY")(), "HTTP proxy"},
		"HTTPS_PROXY": {"HTTPS_PROXY", String("HTTPS_PROXY")(), "HTTPS proxy"},
		"NO_PROXY":    {"NO_PROXY", String("NO_PROXY")(), "No proxy"},
	}

	if runtime.GOOS != "windows" {
		ret["http_proxy"] = EnvVar{"http_proxy", String("http_proxy")(), "HTTP proxy"}
		ret["https_proxy"] = EnvVar{"https_proxy", String("https_proxy")(), "HTTPS proxy"}
		ret["no_proxy"] = EnvVar{"no_proxy", String("no_proxy")(), "No proxy"}
	}

	return ret
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
