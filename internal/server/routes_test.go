package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tomlord1122/kanban-backend/internal/service"
)

type fakeDB struct{ status string }

func (f fakeDB) Health() map[string]string { return map[string]string{"status": f.status} }
func (fakeDB) Close() error                { return nil }
func (fakeDB) GetDB() *gorm.DB             { return nil }
func (fakeDB) Migrate() error              { return nil }

type fakeBoards struct {
	service.BoardService
	err     error
	created service.CreateBoardRequest
	deleted uint
}

func (f *fakeBoards) ListBoards(context.Context) ([]service.BoardResponse, error) {
	return []service.BoardResponse{{ID: 1, Name: "My First Board"}}, f.err
}

func (f *fakeBoards) CreateBoard(_ context.Context, req service.CreateBoardRequest) (*service.BoardResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &service.BoardResponse{ID: 7, Name: req.Name}, nil
}

func (f *fakeBoards) GetBoard(_ context.Context, id uint) (*service.BoardDetailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.BoardDetailResponse{
		BoardResponse: service.BoardResponse{ID: id, Name: "Board"},
		Columns: []service.ColumnDetailResponse{
			{ColumnResponse: service.ColumnResponse{ID: 1, BoardID: id, Title: "To Do", Position: 0}},
		},
	}, nil
}

func (f *fakeBoards) DeleteBoard(_ context.Context, id uint) error {
	f.deleted = id
	return f.err
}

type fakeColumns struct {
	service.ColumnService
	err     error
	moved   service.MoveColumnRequest
	reorder service.ReorderColumnsRequest
}

func (f *fakeColumns) MoveColumn(_ context.Context, id uint, req service.MoveColumnRequest) (*service.ColumnDetailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.moved = req
	return &service.ColumnDetailResponse{ColumnResponse: service.ColumnResponse{ID: id, Position: *req.Position}}, nil
}

func (f *fakeColumns) ReorderColumns(_ context.Context, boardID uint, req service.ReorderColumnsRequest) ([]service.ColumnDetailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.reorder = req
	return []service.ColumnDetailResponse{}, nil
}

type fakeTasks struct {
	service.TaskService
	err   error
	moved service.MoveTaskRequest
}

func (f *fakeTasks) MoveTask(_ context.Context, id uint, req service.MoveTaskRequest) (*service.MoveTaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.moved = req
	return &service.MoveTaskResponse{
		Message: "Task moved successfully",
		Task:    service.TaskResponse{ID: id, ColumnID: req.ColumnID, Position: *req.Position},
	}, nil
}

func (f *fakeTasks) CreateTask(_ context.Context, columnID uint, req service.CreateTaskRequest) (*service.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.TaskResponse{ID: 1, ColumnID: columnID, Title: req.Title}, nil
}

type fixture struct {
	boards  *fakeBoards
	columns *fakeColumns
	tasks   *fakeTasks
	handler http.Handler
}

func newFixture(err error) *fixture {
	f := &fixture{
		boards:  &fakeBoards{err: err},
		columns: &fakeColumns{err: err},
		tasks:   &fakeTasks{err: err},
	}
	s := &Server{boards: f.boards, columns: f.columns, tasks: f.tasks, db: fakeDB{status: "up"}}
	f.handler = s.RegisterRoutes()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	var out map[string]interface{}
	if rr.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rr.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func TestHelloWorldHandler(t *testing.T) {
	rr, body := newFixture(nil).do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "Hello World from Kanban Backend!", body["message"])
}

func TestHealthHandler(t *testing.T) {
	f := newFixture(nil)
	rr, _ := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	s := &Server{db: fakeDB{status: "down"}}
	rr = httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCreateBoard(t *testing.T) {
	f := newFixture(nil)
	rr, body := f.do(t, http.MethodPost, "/boards", `{"name":"Roadmap","description":"Q3"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Roadmap", body["name"])
	assert.Equal(t, "Roadmap", f.boards.created.Name)
	require.NotNil(t, f.boards.created.Description)
	assert.Equal(t, "Q3", *f.boards.created.Description)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "Request body must not be empty"},
		{"syntax", `{"name":}`, "Request body contains badly-formed JSON (at position"},
		{"truncated", `{"name":"x"`, "Request body contains badly-formed JSON"},
		{"wrong type", `{"name":5}`, `Request body contains an invalid value for the "name" field`},
		{"unknown field", `{"name":"x","color":"red"}`, `Request body contains unknown field "color"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := newFixture(nil).do(t, http.MethodPost, "/boards", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			msg, _ := body["error"].(string)
			assert.True(t, strings.HasPrefix(msg, tt.want), "got %q", msg)
		})
	}
}

func TestInvalidID(t *testing.T) {
	f := newFixture(nil)
	for _, path := range []string{"/boards/abc", "/boards/0", "/columns/-1/tasks", "/tasks/1.5"} {
		rr, body := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Contains(t, body["error"], "Invalid", path)
	}
}

func TestGetBoardNestsColumns(t *testing.T) {
	rr, body := newFixture(nil).do(t, http.MethodGet, "/boards/3", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 3, body["id"])
	columns, ok := body["columns"].([]interface{})
	require.True(t, ok)
	require.Len(t, columns, 1)
	assert.Equal(t, "To Do", columns[0].(map[string]interface{})["title"])
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", fmt.Errorf("board with ID 9 %w", service.ErrNotFound), http.StatusNotFound, "board with ID 9 not found"},
		{"conflict", fmt.Errorf("task 5 left column 2 while waiting for the lock: %w", service.ErrConflict), http.StatusConflict, "task 5 left column 2 while waiting for the lock: conflict"},
		{"validation", &service.ValidationError{Fields: map[string]string{"name": "is required"}}, http.StatusBadRequest, "Validation failed"},
		{"storage", errors.New("failed to get board: connection refused"), http.StatusInternalServerError, "Failed to retrieve board"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := newFixture(tt.err).do(t, http.MethodGet, "/boards/9", "")

			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	verr := &service.ValidationError{Fields: map[string]string{"position": "is required"}}
	rr, body := newFixture(verr).do(t, http.MethodPost, "/columns/2/move", `{}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]interface{}{"position": "is required"}, body["fields"])
}

func TestDeleteBoard(t *testing.T) {
	f := newFixture(nil)
	rr, _ := f.do(t, http.MethodDelete, "/boards/4", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, uint(4), f.boards.deleted)
}

func TestMoveColumn(t *testing.T) {
	f := newFixture(nil)
	rr, body := f.do(t, http.MethodPost, "/columns/5/move", `{"position":0}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, f.columns.moved.Position)
	assert.Equal(t, 0, *f.columns.moved.Position)
	assert.EqualValues(t, 5, body["id"])
}

func TestReorderColumns(t *testing.T) {
	f := newFixture(nil)
	rr, _ := f.do(t, http.MethodPost, "/boards/1/column-positions", `{"columns":[{"id":3,"position":0},{"id":1,"position":2}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, f.columns.reorder.Columns, 2)
	assert.Equal(t, uint(3), f.columns.reorder.Columns[0].ID)
	assert.Equal(t, 2, *f.columns.reorder.Columns[1].Position)
}

func TestMoveTask(t *testing.T) {
	f := newFixture(nil)
	rr, body := f.do(t, http.MethodPost, "/tasks/12/move", `{"column_id":4,"position":1}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, uint(4), f.tasks.moved.ColumnID)
	assert.Equal(t, "Task moved successfully", body["message"])
	task := body["task"].(map[string]interface{})
	assert.EqualValues(t, 12, task["id"])
	assert.EqualValues(t, 1, task["position"])
}

func TestCreateTask(t *testing.T) {
	rr, body := newFixture(nil).do(t, http.MethodPost, "/columns/2/tasks", `{"title":"Write docs","priority":"high"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.EqualValues(t, 2, body["column_id"])
	assert.Equal(t, "Write docs", body["title"])
}

func TestListBoardsReturnsArray(t *testing.T) {
	f := newFixture(nil)
	req := httptest.NewRequest(http.MethodGet, "/boards", nil)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var boards []service.BoardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &boards))
	require.Len(t, boards, 1)
	assert.Equal(t, "My First Board", boards[0].Name)
}
