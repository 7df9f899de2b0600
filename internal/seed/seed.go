// Package seed fills an empty database with a sample board.
package seed

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Tomlord1122/kanban-backend/internal/service"
)

// DefaultBoardName names the board created by Run.
const DefaultBoardName = "My First Board"

type sampleTask struct {
	title, description, tag string
}

type sampleColumn struct {
	title string
	tasks []sampleTask
}

var sampleColumns = []sampleColumn{
	{"Backlog", []sampleTask{
		{"Research user needs", "Conduct interviews with 5 customers to understand pain points", "Research"},
		{"Define MVP requirements", "Create a list of must-have features for the first release", "Planning"},
		{"Competitor analysis", "Review top 3 competing products and identify opportunities", "Research"},
		{"Create user personas", "Develop 3-4 user personas based on customer interviews", "UX"},
	}},
	{"To Do", []sampleTask{
		{"Design user authentication flow", "Create wireframes for sign up, login, and password reset", "Design"},
		{"Setup CI/CD pipeline", "Configure GitHub Actions for automated testing and deployment", "DevOps"},
		{"Set up database schema", "Design and implement initial database schema for core entities", "Database"},
		{"Create style guide", "Define design system including colors, typography and components", "Design"},
	}},
	{"In Progress", []sampleTask{
		{"Implement login API", "Create backend endpoints for user authentication", "Backend"},
		{"Build dashboard UI", "Create responsive layout for the main dashboard", "Frontend"},
		{"Implement user profiles", "Create user profile pages with edit functionality", "Frontend"},
		{"Setup error logging", "Integrate Sentry for frontend and backend error tracking", "DevOps"},
	}},
	{"Done", []sampleTask{
		{"Setup project structure", "Initialize repository and configure basic project dependencies", "Setup"},
		{"Implement dark mode", "Add toggle for switching between light and dark themes", "Frontend"},
		{"Create project roadmap", "Outline development phases with key milestones and deadlines", "Planning"},
		{"Infrastructure setup", "Set up AWS infrastructure with Terraform for scalable deployment", "DevOps"},
	}},
}

// Seeder creates the sample board through the regular services, so seeded
// positions follow the same append rules as API writes.
type Seeder struct {
	Boards  service.BoardService
	Columns service.ColumnService
	Tasks   service.TaskService
}

// Run creates the sample board unless a board with the same name exists.
// It returns the board id and whether anything was created. A board that
// fails to fill is deleted again.
func (s *Seeder) Run(ctx context.Context) (uint, bool, error) {
	boards, err := s.Boards.ListBoards(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, b := range boards {
		if b.Name == DefaultBoardName {
			log.WithField("board_id", b.ID).Info("sample board already present, skipping seed")
			return b.ID, false, nil
		}
	}

	board, err := s.Boards.CreateBoard(ctx, service.CreateBoardRequest{Name: DefaultBoardName})
	if err != nil {
		return 0, false, err
	}
	if err := s.fill(ctx, board.ID); err != nil {
		// A partial board would make later runs skip the seed for good.
		if derr := s.Boards.DeleteBoard(ctx, board.ID); derr != nil {
			log.WithError(derr).WithField("board_id", board.ID).Error("failed to remove partially seeded board")
		}
		return 0, false, err
	}

	log.WithFields(log.Fields{"board_id": board.ID, "columns": len(sampleColumns)}).Info("sample board seeded")
	return board.ID, true, nil
}

func (s *Seeder) fill(ctx context.Context, boardID uint) error {
	for _, sc := range sampleColumns {
		column, err := s.Columns.CreateColumn(ctx, boardID, service.CreateColumnRequest{Title: sc.title})
		if err != nil {
			return fmt.Errorf("seed column %q: %w", sc.title, err)
		}
		for _, st := range sc.tasks {
			description, tag := st.description, st.tag
			_, err := s.Tasks.CreateTask(ctx, column.ID, service.CreateTaskRequest{
				Title:       st.title,
				Description: &description,
				Tag:         &tag,
			})
			if err != nil {
				return fmt.Errorf("seed task %q: %w", st.title, err)
			}
		}
	}
	return nil
}
