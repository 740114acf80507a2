// Package respond writes handler responses and maps domain errors to status
// codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/retailboard/internal/aggregate"
	"github.com/MrJamesThe3rd/retailboard/internal/dataset"
	"github.com/MrJamesThe3rd/retailboard/internal/sales"
	"github.com/MrJamesThe3rd/retailboard/internal/session"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// StatusCode maps err to the HTTP status it should produce.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, dataset.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, dataset.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, sales.ErrNoDateColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNoDataset):
		return http.StatusConflict
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}

	return http.StatusInternalServerError
}

// Error writes err as plain text. Unrecognised errors are logged and hidden
// behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", code)

		return
	}

	http.Error(w, err.Error(), code)
}

type Note struct {
	Code    sales.Degradation `json:"code"`
	Message string            `json:"message"`
}

func Notes(notes []sales.Degradation) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, Note{Code: n, Message: n.Message()})
	}

	return out
}

// Status is the wire form of aggregate.Status.
type Status struct {
	Insufficient bool     `json:"insufficient"`
	Missing      []string `json:"missing,omitempty"`
	Notes        []Note   `json:"notes"`
}

func FromStatus(s aggregate.Status) Status {
	out := Status{Insufficient: s.Insufficient(), Notes: Notes(s.Notes)}
	for _, m := range s.Missing {
		out.Missing = append(out.Missing, string(m))
	}

	return out
}
