package httpapi

import (
	"database/sql"
	"net/http"

	"jobscout-engine/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !IsLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "local requests only")
		return
	}
	if h.DB == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "no_database", "sqlite export is disabled")
		return
	}

	if err := store.Checkpoint(r.Context(), h.DB); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "checkpoint_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
