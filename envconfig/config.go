// config.go - Haupt-Konfigurationsfunktionen fuer fastseq
//
// Dieses Modul enthaelt:
// - Host: Adresse fuer den Config-Server (FASTSEQ_HOST)
// - AllowedOrigins: Erlaubte CORS-Origins (FASTSEQ_ORIGINS)
// - HubEndpoint/HubToken: HuggingFace Hub Zugang (HF_ENDPOINT, HF_TOKEN)
// - CacheDir: Verzeichnis fuer heruntergeladene Configs (FASTSEQ_CACHE, HF_HUB_CACHE, HF_HOME)
// - DownloadTimeout: HTTP-Timeout fuer Downloads (FASTSEQ_DOWNLOAD_TIMEOUT)
// - LogLevel: Log-Level (FASTSEQ_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_utils.go: Getter-Fabriken und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHubEndpoint     = "https://huggingface.co"
	defaultDownloadTimeout = 5 * time.Minute
)

// Host gibt Scheme und Host fuer den Config-Server zurueck
// Konfigurierbar via FASTSEQ_HOST
// Default: http://127.0.0.1:11500
func Host() *url.URL {
	defaultPort := "11500"

	s := strings.TrimSpace(Var("FASTSEQ_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via FASTSEQ_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("FASTSEQ_ORIGINS"); s != "" {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	return origins
}

// HubEndpoint gibt die Basis-URL des HuggingFace Hub zurueck
// Konfigurierbar via HF_ENDPOINT
// Default: https://huggingface.co
func HubEndpoint() string {
	if s := Var("HF_ENDPOINT"); s != "" {
		return strings.TrimSuffix(s, "/")
	}
	return defaultHubEndpoint
}

// HubHome gibt das HuggingFace Home-Verzeichnis zurueck
// Konfigurierbar via HF_HOME
// Default: $XDG_CACHE_HOME/huggingface bzw. $HOME/.cache/huggingface
func HubHome() string {
	if s := Var("HF_HOME"); s != "" {
		return s
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			base = filepath.Join(userProfile, ".cache")
		}
	default:
		if xdg := Var("XDG_CACHE_HOME"); xdg != "" {
			base = xdg
		} else if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".cache")
		}
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), "fastseq_cache")
	}

	return filepath.Join(base, "huggingface")
}

// CacheDir gibt das Verzeichnis fuer gecachte Config-Dateien zurueck
// Prioritaet: FASTSEQ_CACHE, HF_HUB_CACHE, HF_HOME/hub
func CacheDir() string {
	if s := Var("FASTSEQ_CACHE"); s != "" {
		return s
	}
	if s := Var("HF_HUB_CACHE"); s != "" {
		return s
	}
	return filepath.Join(HubHome(), "hub")
}

// DownloadTimeout gibt das Timeout fuer einzelne HTTP-Anfragen zurueck
// Konfigurierbar via FASTSEQ_DOWNLOAD_TIMEOUT (Dauer oder Sekunden)
// 0 oder negative Werte = kein Timeout
// Default: 5 Minuten
func DownloadTimeout() (timeout time.Duration) {
	timeout = defaultDownloadTimeout
	if s := Var("FASTSEQ_DOWNLOAD_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			timeout = time.Duration(n) * time.Second
		} else {
			slog.Warn("invalid environment variable, using default", "key", "FASTSEQ_DOWNLOAD_TIMEOUT", "value", s, "default", defaultDownloadTimeout)
		}
	}

	if timeout < 0 {
		return 0
	}

	return timeout
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via FASTSEQ_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("FASTSEQ_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
