// Package pgtest provides a migrated PostgreSQL database backed by
// testcontainers for integration tests.
package pgtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/kanban-backend/internal/config"
	"github.com/Tomlord1122/kanban-backend/internal/database"
)

const (
	dbName = "kanban"
	dbUser = "kanban"
	dbPwd  = "kanban"
)

var (
	once     sync.Once
	shared   database.Service
	startErr error
)

// Open returns a database service with the schema migrated and every table
// empty. The container is started once per test binary and reaped by
// testcontainers when the binary exits. Tests are skipped in -short mode or
// when no container provider is available.
func Open(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() { shared, startErr = start() })
	if startErr != nil {
		t.Fatalf("start postgres container: %v", startErr)
	}

	err := shared.GetDB().Exec("TRUNCATE TABLE tasks, columns, boards RESTART IDENTITY CASCADE").Error
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return shared
}

func start() (database.Service, error) {
	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, err
	}

	svc, err := database.New(config.DBConfig{
		Host:            host,
		Port:            port.Port(),
		Database:        dbName,
		Username:        dbUser,
		Password:        dbPwd,
		MaxIdleConns:    2,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, err
	}
	if err := svc.Migrate(); err != nil {
		return nil, err
	}
	return svc, nil
}
