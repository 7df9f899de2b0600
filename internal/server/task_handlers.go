package server

import (
	"net/http"

	"github.com/Tomlord1122/kanban-backend/internal/service"
)

func (s *Server) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	columnID, ok := parseID(w, r, "column")
	if !ok {
		return
	}

	tasks, err := s.tasks.ListTasks(r.Context(), columnID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to retrieve tasks")
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	columnID, ok := parseID(w, r, "column")
	if !ok {
		return
	}
	var req service.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := s.tasks.CreateTask(r.Context(), columnID, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create task")
		return
	}
	respondWithJSON(w, http.StatusCreated, task)
}

func (s *Server) reorderTasksHandler(w http.ResponseWriter, r *http.Request) {
	columnID, ok := parseID(w, r, "column")
	if !ok {
		return
	}
	var req service.ReorderTasksRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tasks, err := s.tasks.ReorderTasks(r.Context(), columnID, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to reorder tasks")
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "task")
	if !ok {
		return
	}

	task, err := s.tasks.GetTask(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to retrieve task")
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "task")
	if !ok {
		return
	}
	var req service.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := s.tasks.UpdateTask(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update task")
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "task")
	if !ok {
		return
	}

	if err := s.tasks.DeleteTask(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moveTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "task")
	if !ok {
		return
	}
	var req service.MoveTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	moved, err := s.tasks.MoveTask(r.Context(), id, req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to move task")
		return
	}
	respondWithJSON(w, http.StatusOK, moved)
}
