package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/claude/fitlog/internal/export"
)

const maxImportBody = 32 << 20

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBody)
	result, err := s.alpha.Ingest(r.Context(), id, body)
	if err != nil {
		s.log.Error("alpha import error", "routine_id", id, "error", err)
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	view, err := s.lib.View(r.Context(), id)
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRoutine(&buf, view); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.SheetName(view.Name)+".xlsx"))
	w.Write(buf.Bytes())
}
