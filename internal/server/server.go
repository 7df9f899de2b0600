package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/kanban-backend/internal/database"
	"github.com/Tomlord1122/kanban-backend/internal/service"
)

type Server struct {
	port    int
	boards  service.BoardService
	columns service.ColumnService
	tasks   service.TaskService
	db      database.Service
}

// Services bundles the domain services the HTTP layer dispatches to.
type Services struct {
	Boards  service.BoardService
	Columns service.ColumnService
	Tasks   service.TaskService
}

func NewServer(port int, services Services, dbService database.Service) *http.Server {
	appServer := &Server{
		port:    port,
		boards:  services.Boards,
		columns: services.Columns,
		tasks:   services.Tasks,
		db:      dbService,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
