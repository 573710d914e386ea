// Package respond writes JSON responses and maps domain errors to status
// codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/marches/internal/contract"
	"github.com/MrJamesThe3rd/marches/internal/importer"
	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error answers 404 for missing records, 400 for rejected input and 500
// for anything else. Internal errors are logged, not echoed.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contract.ErrNotFound), errors.Is(err, ledger.ErrNoSnapshot):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, contract.ErrInvalid), errors.Is(err, importer.ErrUnknownFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
