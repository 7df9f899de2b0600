package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/Tomlord1122/kanban-backend/internal/service"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.HelloWorldHandler)

	r.Get("/health", s.healthHandler)

	r.Route("/boards", func(r chi.Router) {
		r.Get("/", s.listBoardsHandler)
		r.Post("/", s.createBoardHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getBoardHandler)
			r.Put("/", s.updateBoardHandler)
			r.Delete("/", s.deleteBoardHandler)
			r.Get("/columns", s.listColumnsHandler)
			r.Post("/columns", s.createColumnHandler)
			r.Post("/column-positions", s.reorderColumnsHandler)
		})
	})

	r.Route("/columns/{id}", func(r chi.Router) {
		r.Get("/", s.getColumnHandler)
		r.Put("/", s.updateColumnHandler)
		r.Delete("/", s.deleteColumnHandler)
		r.Post("/move", s.moveColumnHandler)
		r.Get("/tasks", s.listTasksHandler)
		r.Post("/tasks", s.createTaskHandler)
		r.Post("/task-positions", s.reorderTasksHandler)
	})

	r.Route("/tasks/{id}", func(r chi.Router) {
		r.Get("/", s.getTaskHandler)
		r.Put("/", s.updateTaskHandler)
		r.Delete("/", s.deleteTaskHandler)
		r.Post("/move", s.moveTaskHandler)
	})

	return r
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello World from Kanban Backend!"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// parseID reads the {id} URL parameter. It writes a 400 response and
// reports false when the parameter is not a positive integer.
func parseID(w http.ResponseWriter, r *http.Request, entity string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID provided", entity))
		return 0, false
	}
	return uint(id), true
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
// On failure it writes the matching error response and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	case errors.Is(err, io.ErrUnexpectedEOF):
		respondWithError(w, http.StatusBadRequest, "Request body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Request body contains unknown field %s", fieldName))
	case errors.Is(err, io.EOF):
		respondWithError(w, http.StatusBadRequest, "Request body must not be empty")
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("decode request body")
		respondWithError(w, http.StatusInternalServerError, "Error processing request")
	}
	return false
}

// respondWithServiceError maps a service error onto a status code. Storage
// failures are hidden behind fallback.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("marshal JSON response")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
