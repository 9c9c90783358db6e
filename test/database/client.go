package database

import (
	"context"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/test/util"
	"github.com/stretchr/testify/require"
)

// NewTestClient returns a *database.Client on a fresh test schema.
// CI supplies an external PostgreSQL via CI_DATABASE_URL; local runs get
// a shared testcontainer. Schema drop and connection close are handled
// by the underlying setup's t.Cleanup.
func NewTestClient(t *testing.T) *database.Client {
	ctx := context.Background()

	entClient, db := util.SetupTestDatabase(t)

	// Indexes that ent's Schema.Create cannot express.
	drv := entsql.OpenDB(dialect.Postgres, db)
	require.NoError(t, database.CreateGINIndexes(ctx, drv))
	require.NoError(t, database.CreatePartialUniqueIndexes(ctx, drv))

	return database.NewClientFromEnt(entClient, db)
}
