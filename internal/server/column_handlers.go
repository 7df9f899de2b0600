package server

import (
	"net/http"

	"github.com/Tomlord1122/kanban-backend/internal/service"
)

func (s *Server) listColumnsHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := parseID(w, r, "board")
	if !ok {
		return
	}

	columns, err := s.columns.ListColumns(r.Context(), boardID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to retrieve columns")
		return
	}
	respondWithJSON(w, http.StatusOK, columns)
}

func (s *Server) createColumnHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := parseID(w, r, "board")
	if !ok {
		return
	}
	var req service.CreateColumnRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	column, err := s.columns.CreateColumn(r.Context(), boardID, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create column")
		return
	}
	respondWithJSON(w, http.StatusCreated, column)
}

func (s *Server) reorderColumnsHandler(w http.ResponseWriter, r *http.Request) {
	boardID, ok := parseID(w, r, "board")
	if !ok {
		return
	}
	var req service.ReorderColumnsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	columns, err := s.columns.ReorderColumns(r.Context(), boardID, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to reorder columns")
		return
	}
	respondWithJSON(w, http.StatusOK, columns)
}

func (s *Server) getColumnHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "column")
	if !ok {
		return
	}

	column, err := s.columns.GetColumn(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to retrieve column")
		return
	}
	respondWithJSON(w, http.StatusOK, column)
}

func (s *Server) updateColumnHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "column")
	if !ok {
		return
	}
	var req service.UpdateColumnRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	column, err := s.columns.UpdateColumn(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update column")
		return
	}
	respondWithJSON(w, http.StatusOK, column)
}

func (s *Server) deleteColumnHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "column")
	if !ok {
		return
	}

	if err := s.columns.DeleteColumn(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete column")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moveColumnHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "column")
	if !ok {
		return
	}
	var req service.MoveColumnRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	column, err := s.columns.MoveColumn(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to move column")
		return
	}
	respondWithJSON(w, http.StatusOK, column)
}
