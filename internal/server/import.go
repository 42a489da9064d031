package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/fitlife/internal/importer"
)

// maxImportBytes caps the body of POST /api/v1/import.
const maxImportBytes = 32 << 20

// handleImport replaces the store with the posted document. ?dry_run=true
// validates without writing.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		var err error
		if dryRun, err = strconv.ParseBool(v); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid dry_run "+strconv.Quote(v))
			return
		}
	}

	imp := importer.New(s.svc.Repository(), s.log, dryRun)
	stats, err := imp.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes))
	switch {
	case errors.Is(err, importer.ErrUndecodable):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "stats": stats})
	case err != nil && stats == nil:
		writeMessage(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, stats)
	}
}
