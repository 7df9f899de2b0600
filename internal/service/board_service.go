package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Tomlord1122/kanban-backend/internal/domain"
	"github.com/Tomlord1122/kanban-backend/internal/repository"
)

// SnapshotCache stores serialized board views. Implementations must treat
// every failure as a cache miss.
type SnapshotCache interface {
	// Generation changes whenever boardID is evicted.
	Generation(ctx context.Context, boardID uint) int64
	Load(ctx context.Context, boardID uint, dst interface{}) bool
	// Store caches v unless boardID was evicted after gen was read.
	Store(ctx context.Context, boardID uint, gen int64, v interface{})
	Evict(ctx context.Context, boardIDs ...uint)
}

// BoardService defines the operations for managing boards.
type BoardService interface {
	ListBoards(ctx context.Context) ([]BoardResponse, error)
	CreateBoard(ctx context.Context, req CreateBoardRequest) (*BoardResponse, error)
	// GetBoard returns the board with its ordered columns and tasks.
	GetBoard(ctx context.Context, id uint) (*BoardDetailResponse, error)
	UpdateBoard(ctx context.Context, id uint, req UpdateBoardRequest) (*BoardResponse, error)
	// DeleteBoard removes the board together with its columns and tasks.
	DeleteBoard(ctx context.Context, id uint) error
}

type boardService struct {
	store repository.Store
	cache SnapshotCache
}

// NewBoardService creates a BoardService. cache may be nil.
func NewBoardService(store repository.Store, cache SnapshotCache) BoardService {
	return &boardService{store: store, cache: orNop(cache)}
}

func (s *boardService) ListBoards(ctx context.Context) ([]BoardResponse, error) {
	boards, err := s.store.Boards().GetAll(ctx)
	if err != nil {
		return nil, failure(err, "list boards", nil)
	}
	out := make([]BoardResponse, 0, len(boards))
	for i := range boards {
		out = append(out, newBoardResponse(&boards[i]))
	}
	return out, nil
}

func (s *boardService) CreateBoard(ctx context.Context, req CreateBoardRequest) (*BoardResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	board := &domain.Board{Name: req.Name, Description: req.Description}
	if err := s.store.Boards().Create(ctx, board); err != nil {
		return nil, failure(err, "create board", log.Fields{"name": req.Name})
	}
	resp := newBoardResponse(board)
	return &resp, nil
}

func (s *boardService) GetBoard(ctx context.Context, id uint) (*BoardDetailResponse, error) {
	var cached BoardDetailResponse
	if s.cache.Load(ctx, id, &cached) {
		return &cached, nil
	}

	gen := s.cache.Generation(ctx, id)
	board, err := s.store.Boards().FindByIDWithColumns(ctx, id)
	if err != nil {
		return nil, failure(lookupErr("board", id, err), "get board", log.Fields{"board_id": id})
	}
	resp := newBoardDetailResponse(board)
	s.cache.Store(ctx, id, gen, resp)
	return &resp, nil
}

func (s *boardService) UpdateBoard(ctx context.Context, id uint, req UpdateBoardRequest) (*BoardResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	board, err := s.store.Boards().FindByID(ctx, id)
	if err != nil {
		return nil, failure(lookupErr("board", id, err), "update board", log.Fields{"board_id": id})
	}

	board.Name = req.Name
	if req.Description != nil {
		board.Description = req.Description
	}
	if err := s.store.Boards().Update(ctx, board); err != nil {
		return nil, failure(err, "update board", log.Fields{"board_id": id})
	}
	s.cache.Evict(ctx, id)

	resp := newBoardResponse(board)
	return &resp, nil
}

func (s *boardService) DeleteBoard(ctx context.Context, id uint) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Boards().Lock(ctx, id); err != nil {
			return lookupErr("board", id, err)
		}
		return tx.Boards().Delete(ctx, id)
	})
	if err != nil {
		return failure(err, "delete board", log.Fields{"board_id": id})
	}
	s.cache.Evict(ctx, id)
	return nil
}

type nopCache struct{}

func (nopCache) Generation(context.Context, uint) int64          { return 0 }
func (nopCache) Load(context.Context, uint, interface{}) bool    { return false }
func (nopCache) Store(context.Context, uint, int64, interface{}) {}
func (nopCache) Evict(context.Context, ...uint)                  {}

func orNop(c SnapshotCache) SnapshotCache {
	if c == nil {
		return nopCache{}
	}
	return c
}
