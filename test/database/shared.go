package database

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/test/util"
	"github.com/stretchr/testify/require"
)

// SharedTestDB is one PostgreSQL schema used by several test replicas at
// once. Every replica opens its own pool against the same schema, which
// is what cross-replica NOTIFY/LISTEN tests need.
type SharedTestDB struct {
	connStrWithSchema string
	baseConnStr       string
	schemaName        string
}

// openPool opens a pgx-backed *sql.DB with the pool limits all test
// connections use, plus an ent driver over it.
func openPool(t *testing.T, connStr string) (*stdsql.DB, *entsql.Driver) {
	t.Helper()

	db, err := stdsql.Open("pgx", connStr)
	require.NoError(t, err)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, entsql.OpenDB(dialect.Postgres, db)
}

// NewSharedTestDB creates the schema, runs migrations plus the GIN and
// partial unique indexes once, and schedules the schema drop via
// t.Cleanup. Use NewClient for each replica's database client.
func NewSharedTestDB(t *testing.T) *SharedTestDB {
	t.Helper()
	ctx := context.Background()

	baseConnStr := util.GetBaseConnectionString(t)
	schemaName := util.GenerateSchemaName(t)

	db, err := stdsql.Open("pgx", baseConnStr)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", schemaName))
	require.NoError(t, err)
	t.Logf("SharedTestDB: created schema %s", schemaName)
	_ = db.Close()

	// Migrations run once on a throwaway pool scoped to the schema.
	connStrWithSchema := util.AddSearchPathToConnString(baseConnStr, schemaName)
	db, drv := openPool(t, connStrWithSchema)
	entClient := ent.NewClient(ent.Driver(drv))

	require.NoError(t, entClient.Schema.Create(ctx))
	require.NoError(t, database.CreateGINIndexes(ctx, drv))
	require.NoError(t, database.CreatePartialUniqueIndexes(ctx, drv))

	_ = entClient.Close()
	_ = db.Close()

	// Cleanups run LIFO, so replica shutdowns registered later happen
	// before this drop.
	t.Cleanup(func() {
		cleanDB, err := stdsql.Open("pgx", baseConnStr)
		if err != nil {
			t.Logf("SharedTestDB: warning: could not connect to drop schema %s: %v", schemaName, err)
			return
		}
		defer func() { _ = cleanDB.Close() }()
		_, err = cleanDB.ExecContext(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
		if err != nil {
			t.Logf("SharedTestDB: warning: failed to drop schema %s: %v", schemaName, err)
		}
	})

	return &SharedTestDB{
		connStrWithSchema: connStrWithSchema,
		baseConnStr:       baseConnStr,
		schemaName:        schemaName,
	}
}

// NewClient opens a fresh pool into the shared schema and wraps it in a
// *database.Client. Separate pools let replicas shut down independently.
// Connections are closed via t.Cleanup.
func (s *SharedTestDB) NewClient(t *testing.T) *database.Client {
	t.Helper()

	db, drv := openPool(t, s.connStrWithSchema)
	entClient := ent.NewClient(ent.Driver(drv))

	t.Cleanup(func() {
		_ = entClient.Close()
		_ = db.Close()
	})

	return database.NewClientFromEnt(entClient, db)
}
