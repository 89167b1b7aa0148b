// client_api.go - API-Methoden des Clients
// Enthaelt: Heartbeat, Version, ListConfigs, ShowConfig, EvictConfig, Resolve
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fastseq/fastseq/unilm"
)

// Heartbeat checks if the server has started and is responsive; if yes, it
// returns nil, otherwise an error.
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, "/", nil, nil, nil)
}

// Version returns the server version as a string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, nil, &version); err != nil {
		return "", err
	}
	return version.Version, nil
}

// ListConfigs lists the registry of known config names.
func (c *Client) ListConfigs(ctx context.Context) ([]RegistryEntry, error) {
	var entries []RegistryEntry
	if err := c.do(ctx, http.MethodGet, "/api/configs", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ShowConfig loads a config on the server. force re-downloads it.
func (c *Client) ShowConfig(ctx context.Context, name string, force bool) (*unilm.Config, error) {
	var query url.Values
	if force {
		query = url.Values{"force": {"true"}}
	}

	cfg := unilm.Default()
	if err := c.do(ctx, http.MethodGet, "/api/configs/"+name, query, nil, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EvictConfig drops a loaded config from the server's memory.
func (c *Client) EvictConfig(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/configs/"+name, nil, nil, nil)
}

// Resolve returns the effective target of a name.
func (c *Client) Resolve(ctx context.Context, name string) (*ResolveResponse, error) {
	var resp ResolveResponse
	if err := c.do(ctx, http.MethodGet, "/api/resolve/"+name, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
