package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstore/relstore/pkg/catalog"
	"github.com/relstore/relstore/pkg/engine"
	"github.com/relstore/relstore/pkg/value"
)

func schema() *engine.Schema {
	return engine.NewSchema([]engine.Column{{Name: "id", Type: value.Integer}})
}

func TestLookupTableMissing(t *testing.T) {
	db := catalog.New()
	_, ok := db.LookupTable("ghosts")
	assert.False(t, ok, "expected LookupTable to report false for a table that was never created")
}

func TestDropThenRecreateSameName(t *testing.T) {
	db := catalog.New()
	db.CreateTable("users", schema(), []string{"id"}, nil, nil)
	require.NoError(t, db.DropTable("users"))
	_, err := db.CreateTable("users", schema(), []string{"id"}, nil, nil)
	require.NoError(t, err, "recreate table after drop")
}

func TestDropUnknownTable(t *testing.T) {
	db := catalog.New()
	err := db.DropTable("ghosts")
	assert.Error(t, err, "expected an error dropping a table that does not exist")
}

func TestAllTablesEnumeratesEveryCreatedTable(t *testing.T) {
	db := catalog.New()
	db.CreateTable("users", schema(), []string{"id"}, nil, nil)
	db.CreateTable("posts", schema(), []string{"id"}, nil, nil)
	assert.Len(t, db.AllTables(), 2)
}
