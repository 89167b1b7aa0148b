// client.go - HTTP-Client fuer Config-Downloads mit lokalem Cache
// Laedt config.json Dateien von beliebigen URLs und vom HuggingFace Hub.
package pretrained

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fastseq/fastseq/envconfig"
	"github.com/fastseq/fastseq/logutil"
	"github.com/fastseq/fastseq/version"
)

// Download-Konstanten
const (
	DefaultRevision    = "main"
	MaxDownloadRetries = 3
	DownloadRetryDelay = 2 * time.Second
	maxErrorBody       = 1024
)

// Client laedt Konfigurationsdateien und legt sie im Cache ab.
// Ein Client ist fuer gleichzeitige Nutzung sicher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	cacheDir   string
	offline    bool
	retries    int
	retryDelay time.Duration

	group singleflight.Group
}

// ClientOption ist eine Funktion zur Konfiguration des Clients
type ClientOption func(*Client)

// WithToken setzt den HuggingFace API Token
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithBaseURL setzt eine Custom Hub-URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithClientTimeout setzt den HTTP Timeout
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithUserAgent setzt einen Custom User-Agent
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient setzt einen Custom HTTP Client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// WithCacheDir setzt das Cache-Verzeichnis
func WithCacheDir(dir string) ClientOption {
	return func(c *Client) { c.cacheDir = dir }
}

// WithOffline erlaubt nur Zugriffe auf den Cache
func WithOffline(offline bool) ClientOption {
	return func(c *Client) { c.offline = offline }
}

// WithRetries setzt Anzahl und Abstand der Download-Versuche
func WithRetries(n int, delay time.Duration) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
		c.retryDelay = delay
	}
}

// NewClient erstellt einen neuen Client. Standardwerte kommen aus der Umgebung.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: envconfig.DownloadTimeout()},
		baseURL:    envconfig.HubEndpoint(),
		token:      envconfig.HubToken(),
		userAgent:  "fastseq/" + version.Version,
		cacheDir:   envconfig.CacheDir(),
		offline:    envconfig.Offline(),
		retries:    MaxDownloadRetries,
		retryDelay: DownloadRetryDelay,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL gibt die aktuelle Hub-URL zurueck
func (c *Client) BaseURL() string { return c.baseURL }

// HasToken prueft ob ein Token konfiguriert ist
func (c *Client) HasToken() bool { return c.token != "" }

// Offline gibt zurueck ob der Client nur den Cache nutzt
func (c *Client) Offline() bool { return c.offline }

// HubURL baut die Download-URL einer Datei in einem Hub-Repository
func (c *Client) HubURL(modelID, revision, filename string) string {
	if revision == "" {
		revision = DefaultRevision
	}
	return fmt.Sprintf("%s/%s/resolve/%s/%s", c.baseURL, modelID, revision, filename)
}

// Fetch laedt eine URL in den Cache und gibt den lokalen Pfad zurueck.
// Liegt bereits eine Kopie vor, wird per ETag revalidiert. force ignoriert den Cache.
// Gleichzeitige Aufrufe fuer dieselbe URL teilen sich einen Download,
// der Abbruch eines Aufrufers beendet ihn nicht fuer die anderen.
func (c *Client) Fetch(ctx context.Context, url string, force bool) (string, error) {
	key := url
	if force {
		key = "force\x00" + url
	}

	if err := ctx.Err(); err != nil {
		return "", &Error{Op: "fetch", Name: url, Err: err}
	}

	// Der gemeinsame Download haengt nicht am Kontext des ersten Aufrufers,
	// jeder Aufrufer wartet nur so lange wie sein eigener Kontext lebt.
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), url, force)
	})

	select {
	case <-ctx.Done():
		slog.Debug("config download abandoned", "url", url, "error", ctx.Err())
		return "", &Error{Op: "fetch", Name: url, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			slog.Debug("shared config download", "url", url)
		}
		return res.Val.(string), nil
	}
}

func (c *Client) fetch(ctx context.Context, url string, force bool) (string, error) {
	cached, haveCache := c.Cached(url)
	logutil.Trace("config cache lookup", "url", url, "cached", haveCache, "force", force)
	if c.offline {
		if haveCache {
			slog.Debug("offline, using cached config", "url", url)
			return cached.Path, nil
		}
		return "", &Error{Op: "fetch", Name: url, Err: ErrOffline}
	}

	var etag string
	if haveCache && !force {
		etag = cached.ETag
	}

	resp, err := c.get(ctx, url, etag)
	if err != nil {
		if haveCache && !force && errors.Is(err, ErrNetworkError) {
			slog.Warn("download failed, using cached config", "url", url, "error", err)
			return cached.Path, nil
		}
		return "", &Error{Op: "fetch", Name: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && haveCache {
		slog.Debug("config cache hit", "url", url, "etag", etag)
		return cached.Path, nil
	}
	if err := c.handleResponseError(resp); err != nil {
		return "", &Error{Op: "fetch", Name: url, Err: err}
	}

	path, err := c.store(url, resp.Header.Get("ETag"), func(f *os.File) error {
		if _, err := io.Copy(f, resp.Body); err != nil {
			return fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
		return nil
	})
	if err != nil {
		return "", &Error{Op: "fetch", Name: url, Err: err}
	}

	slog.Debug("config downloaded", "url", url, "path", path)
	return path, nil
}

// get fuehrt einen GET mit Wiederholungen bei Netzwerk- und Serverfehlern aus
func (c *Client) get(ctx context.Context, url, etag string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
		c.setHeaders(req)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}

		logutil.Trace("config request", "url", url, "attempt", attempt+1, "if_none_match", etag)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrNetworkError, err)
			slog.Debug("download attempt failed", "url", url, "attempt", attempt+1, "error", err)
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: status %d - %s", ErrNetworkError, resp.StatusCode, string(body))
			slog.Debug("download attempt failed", "url", url, "attempt", attempt+1, "status", resp.StatusCode)
			continue
		}

		logutil.Trace("config response", "url", url, "status", resp.StatusCode, "etag", resp.Header.Get("ETag"))
		return resp, nil
	}

	return nil, fmt.Errorf("download nach %d versuchen fehlgeschlagen: %w", c.retries, lastErr)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) handleResponseError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return fmt.Errorf("%w: status %d - %s", ErrInvalidResponse, resp.StatusCode, string(body))
		}
		return nil
	}
}
