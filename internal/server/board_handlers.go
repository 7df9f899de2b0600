package server

import (
	"net/http"

	"github.com/Tomlord1122/kanban-backend/internal/service"
)

func (s *Server) listBoardsHandler(w http.ResponseWriter, r *http.Request) {
	boards, err := s.boards.ListBoards(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to retrieve boards")
		return
	}
	respondWithJSON(w, http.StatusOK, boards)
}

func (s *Server) createBoardHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	board, err := s.boards.CreateBoard(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create board")
		return
	}
	respondWithJSON(w, http.StatusCreated, board)
}

func (s *Server) getBoardHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "board")
	if !ok {
		return
	}

	board, err := s.boards.GetBoard(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to retrieve board")
		return
	}
	respondWithJSON(w, http.StatusOK, board)
}

func (s *Server) updateBoardHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "board")
	if !ok {
		return
	}
	var req service.UpdateBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	board, err := s.boards.UpdateBoard(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update board")
		return
	}
	respondWithJSON(w, http.StatusOK, board)
}

func (s *Server) deleteBoardHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "board")
	if !ok {
		return
	}

	if err := s.boards.DeleteBoard(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete board")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
