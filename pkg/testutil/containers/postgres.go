//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"comphub/internal/platform/postgres"
)

// PostgresContainer wraps a testcontainers Postgres instance with an open
// database handle and the schema already migrated.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	DSN       string
}

// manager shares one Postgres container across all integration suites in a
// package run; containers are expensive to start and the suites truncate
// their own tables between tests.
type manager struct {
	mu sync.Mutex
	pg *PostgresContainer
}

var sharedManager = &manager{}

// GetManager returns the process-wide container manager.
func GetManager() *manager { return sharedManager }

// GetPostgres returns the shared Postgres container, starting it on first use.
func (m *manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pg != nil {
		return m.pg
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("comphub_test"),
		tcpostgres.WithUsername("comphub"),
		tcpostgres.WithPassword("comphub"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := postgres.Open(postgres.Config{URL: dsn, MaxOpenConns: 5, MaxIdleConns: 5, ConnMaxLifetime: time.Minute})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}

	// Store integration tests live at internal/<module>/store/postgres, so
	// the migrations directory is four levels up from the test's working dir.
	if err := postgres.Migrate(db, "file://../../../../migrations"); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to migrate schema: %v", err)
	}

	m.pg = &PostgresContainer{Container: container, DB: db, DSN: dsn}
	return m.pg
}

// TruncateTables truncates the given tables, cascading to dependents.
func (c *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	_, err := c.DB.ExecContext(ctx, stmt)
	return err
}
