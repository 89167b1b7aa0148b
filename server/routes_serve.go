// routes_serve.go - Server-Start und Lifecycle-Management
// Enthaelt: Serve() - Hauptfunktion zum Starten des HTTP-Servers

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/fastseq/fastseq/envconfig"
	"github.com/fastseq/fastseq/logutil"
	"github.com/fastseq/fastseq/pretrained"
	"github.com/fastseq/fastseq/version"
)

// shutdownTimeout begrenzt das Warten auf laufende Anfragen
const shutdownTimeout = 10 * time.Second

// Serve startet den HTTP-Server auf ln und blockiert bis SIGINT/SIGTERM
func Serve(ln net.Listener) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	client := pretrained.NewClient()
	if err := os.MkdirAll(client.CacheDir(), 0o755); err != nil {
		return fmt.Errorf("cache-verzeichnis anlegen: %w", err)
	}

	s := NewServer(pretrained.NewLoader(pretrained.WithClient(client)))

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	srvr := &http.Server{
		Handler:           s.GenerateRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, done := context.WithCancel(context.Background())

	// listen for a ctrl+c and shut down gracefully
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer done()
		<-signals
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srvr.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown failed", "error", err)
			srvr.Close()
		}
	}()

	err := srvr.Serve(ln)
	// If server is closed from the signal handler, wait for the ctx to be done
	// otherwise error out quickly
	if !slices.Contains([]error{http.ErrServerClosed}, err) {
		return err
	}
	<-ctx.Done()
	return nil
}
