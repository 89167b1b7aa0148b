// Package server - HTTP-Router fuer den Config-Server
// Beinhaltet: Server-Struct, Router-Registrierung, Middleware, Handler
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fastseq/fastseq/api"
	"github.com/fastseq/fastseq/envconfig"
	"github.com/fastseq/fastseq/pretrained"
	"github.com/fastseq/fastseq/unilm"
	"github.com/fastseq/fastseq/version"
)

var mode string = gin.DebugMode

// RequestIDHeader traegt die ID jeder Anfrage
const RequestIDHeader = "X-Request-ID"

// Server liefert aufgeloeste Konfigurationen als JSON aus
type Server struct {
	loader *pretrained.Loader

	// configs cached bereits geladene Konfigurationen pro Name
	configs map[string]*unilm.Config
	mu      sync.RWMutex
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// NewServer erstellt einen Server. Ohne Loader wird pretrained.NewLoader() verwendet.
func NewServer(loader *pretrained.Loader) *Server {
	if loader == nil {
		loader = pretrained.NewLoader()
	}
	return &Server{loader: loader, configs: make(map[string]*unilm.Config)}
}

// requestIDMiddleware setzt eine eindeutige ID pro Anfrage
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
		RequestIDHeader,
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		cors.New(corsConfig),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "fastseq is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "fastseq is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version}) })

	// Registry und Konfigurationen
	r.GET("/api/configs", s.ListHandler)
	r.GET("/api/configs/*name", s.ShowHandler)
	r.DELETE("/api/configs/*name", s.EvictHandler)
	r.GET("/api/resolve/*name", s.ResolveHandler)

	return r
}

// ListHandler listet die Registry
func (s *Server) ListHandler(c *gin.Context) {
	names := unilm.KnownNames()
	entries := make([]api.RegistryEntry, 0, len(names))
	for _, name := range names {
		url := unilm.ResolveName(name)
		_, cached := s.loader.Client().Cached(url)
		entries = append(entries, api.RegistryEntry{Name: name, URL: url, Cached: cached})
	}
	c.JSON(http.StatusOK, entries)
}

// ShowHandler laedt eine Konfiguration und gibt sie als JSON zurueck.
// ?force=true laedt sie erneut herunter.
func (s *Server) ShowHandler(c *gin.Context) {
	name := nameParam(c)
	if name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: "name is required"})
		return
	}
	force, _ := strconv.ParseBool(c.Query("force"))

	if !force {
		s.mu.RLock()
		cfg, ok := s.configs[name]
		s.mu.RUnlock()
		if ok {
			c.JSON(http.StatusOK, cfg)
			return
		}
	}

	loader := s.loader
	if force {
		loader = pretrained.NewLoader(pretrained.WithClient(s.loader.Client()), pretrained.WithForceDownload(true))
	}

	cfg, err := unilm.FromPretrained(c.Request.Context(), name, unilm.WithLoader(loader))
	if err != nil {
		slog.Debug("config load failed", "name", name, "request_id", c.GetString("request_id"), "error", err)
		status := statusFor(err)
		body := api.ErrorResponse{Error: err.Error()}
		if status == http.StatusNotFound || status == http.StatusBadRequest {
			body.Suggestion, _ = unilm.SuggestName(name)
		}
		c.AbortWithStatusJSON(status, body)
		return
	}

	s.mu.Lock()
	s.configs[name] = cfg
	s.mu.Unlock()

	c.JSON(http.StatusOK, cfg)
}

// EvictHandler entfernt eine Konfiguration aus dem Speicher-Cache
func (s *Server) EvictHandler(c *gin.Context) {
	name := nameParam(c)

	s.mu.Lock()
	_, ok := s.configs[name]
	delete(s.configs, name)
	s.mu.Unlock()

	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, api.ErrorResponse{Error: "config " + strconv.Quote(name) + " not loaded"})
		return
	}
	c.Status(http.StatusOK)
}

// ResolveHandler gibt das effektive Ziel eines Namens zurueck
func (s *Server) ResolveHandler(c *gin.Context) {
	name := nameParam(c)
	c.JSON(http.StatusOK, api.ResolveResponse{Name: name, Target: unilm.ResolveName(name), Known: unilm.IsKnownName(name)})
}

func nameParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("name"), "/")
}

// statusFor bildet Ladefehler auf HTTP-Statuscodes ab
func statusFor(err error) int {
	switch {
	case pretrained.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, pretrained.ErrInvalidModelID):
		return http.StatusBadRequest
	case errors.Is(err, pretrained.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, pretrained.ErrOffline):
		return http.StatusServiceUnavailable
	case errors.Is(err, pretrained.ErrNetworkError),
		errors.Is(err, pretrained.ErrRateLimited),
		errors.Is(err, pretrained.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, pretrained.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
