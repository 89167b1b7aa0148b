// types.go - Request- und Response-Typen des Config-Servers
// Enthaelt: StatusError, RegistryEntry, ResolveResponse, VersionResponse
package api

import "fmt"

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
	Suggestion   string `json:"suggestion,omitempty"`
}

func (e StatusError) Error() string {
	msg := ""
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		msg = fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		msg = e.Status
	case e.ErrorMessage != "":
		msg = e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the fastseq server logs for details"
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// ErrorResponse ist der Body aller Fehlerantworten
type ErrorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// RegistryEntry beschreibt einen Eintrag der Registry
type RegistryEntry struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Cached bool   `json:"cached"`
}

// ResolveResponse ist die Antwort von /api/resolve
type ResolveResponse struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Known  bool   `json:"known"`
}

// VersionResponse ist die Antwort von /api/version
type VersionResponse struct {
	Version string `json:"version"`
}
