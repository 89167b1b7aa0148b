// errors.go - Fehler-Definitionen fuer das Laden vortrainierter Konfigurationen
package pretrained

import "errors"

var (
	ErrModelNotFound   = errors.New("modell nicht gefunden")
	ErrUnauthorized    = errors.New("authentifizierung fehlgeschlagen")
	ErrRateLimited     = errors.New("rate limit ueberschritten")
	ErrNetworkError    = errors.New("netzwerkfehler")
	ErrInvalidModelID  = errors.New("ungueltige modell-id")
	ErrInvalidResponse = errors.New("ungueltige server-antwort")
	ErrConfigNotFound  = errors.New("config.json nicht gefunden")
	ErrInvalidConfig   = errors.New("ungueltige config.json Struktur")
	ErrOffline         = errors.New("offline-modus und keine gecachte datei")
)

// Error repraesentiert einen Fehler beim Aufloesen oder Laden einer Konfiguration
type Error struct {
	Op   string // Operation (resolve, fetch, decode)
	Name string // Modellname, Pfad oder URL
	Err  error  // Urspruenglicher Fehler
}

// Error implementiert das error Interface
func (e *Error) Error() string {
	if e.Name != "" {
		return "pretrained " + e.Op + " [" + e.Name + "]: " + e.Err.Error()
	}
	return "pretrained " + e.Op + ": " + e.Err.Error()
}

// Unwrap ermoeglicht errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}
