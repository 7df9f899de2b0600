package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Tomlord1122/kanban-backend/internal/config"
	"github.com/Tomlord1122/kanban-backend/internal/database"
	"github.com/Tomlord1122/kanban-backend/internal/repository"
	"github.com/Tomlord1122/kanban-backend/internal/seed"
	"github.com/Tomlord1122/kanban-backend/internal/service"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "admin",
		Short:        "Maintenance commands for the kanban backend database",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect loads the configuration and opens the database it names.
func connect() (database.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	return database.New(cfg.DB)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the boards, columns and tasks tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the sample board unless it already exists",
		Long: `Create "My First Board" with the Backlog, To Do, In Progress and Done
columns and four sample tasks in each. Running it again is a no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := db.Migrate(); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			store := repository.NewGormStore(db.GetDB())
			seeder := &seed.Seeder{
				Boards:  service.NewBoardService(store, nil),
				Columns: service.NewColumnService(store, nil),
				Tasks:   service.NewTaskService(store, nil),
			}
			id, created, err := seeder.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded board %d.\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Board %d already seeded.\n", id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "migrate the schema before seeding")
	return cmd
}
