package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstore/relstore/pkg/catalog"
	"github.com/relstore/relstore/pkg/engine"
	"github.com/relstore/relstore/pkg/rowstore"
	"github.com/relstore/relstore/pkg/value"
)

func usersSchema() *engine.Schema {
	return engine.NewSchema([]engine.Column{
		{Name: "id", Type: value.Integer},
		{Name: "email", Type: value.TextType},
	})
}

func TestInsertDuplicatePrimaryKeyRejected(t *testing.T) {
	db := catalog.New()
	users, err := db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	require.NoError(t, err)
	_, err = users.Insert(rowstore.Row{"id": value.NewInt(1), "email": value.NewText("a@example.com")})
	require.NoError(t, err, "first insert")

	_, err = users.Insert(rowstore.Row{"id": value.NewInt(1), "email": value.NewText("b@example.com")})
	require.Error(t, err, "expected duplicate primary key error")
	engErr, ok := err.(*engine.Error)
	require.True(t, ok)
	assert.Equal(t, engine.KindDuplicatePK, engErr.Kind)
}

func TestInsertDuplicateUniqueRejected(t *testing.T) {
	db := catalog.New()
	users, _ := db.CreateTable("users", usersSchema(), []string{"id"}, [][]string{{"email"}}, nil)
	_, err := users.Insert(rowstore.Row{"id": value.NewInt(1), "email": value.NewText("a@example.com")})
	require.NoError(t, err, "first insert")

	_, err = users.Insert(rowstore.Row{"id": value.NewInt(2), "email": value.NewText("a@example.com")})
	require.Error(t, err, "expected duplicate unique key error")
	ee, ok := err.(*engine.Error)
	require.True(t, ok)
	assert.Equal(t, engine.KindDuplicateUnique, ee.Kind)
}

func TestForeignKeyInsertRejectsUnknownReference(t *testing.T) {
	db := catalog.New()
	db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)

	postsSchema := engine.NewSchema([]engine.Column{
		{Name: "id", Type: value.Integer},
		{Name: "user_id", Type: value.Integer},
	})
	posts, _ := db.CreateTable("posts", postsSchema, []string{"id"},
		nil, []engine.ForeignKey{{Column: "user_id", RefTable: "users", RefColumn: "id"}})

	_, err := posts.Insert(rowstore.Row{"id": value.NewInt(1), "user_id": value.NewInt(99)})
	require.Error(t, err, "expected foreign key constraint failure")
	ee, ok := err.(*engine.Error)
	require.True(t, ok)
	assert.Equal(t, engine.KindForeignKey, ee.Kind)
}

func TestDeleteRejectedWhenReferenced(t *testing.T) {
	db := catalog.New()
	users, _ := db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	postsSchema := engine.NewSchema([]engine.Column{
		{Name: "id", Type: value.Integer},
		{Name: "user_id", Type: value.Integer},
	})
	posts, _ := db.CreateTable("posts", postsSchema, []string{"id"},
		nil, []engine.ForeignKey{{Column: "user_id", RefTable: "users", RefColumn: "id"}})

	uid, _ := users.Insert(rowstore.Row{"id": value.NewInt(1), "email": value.NewText("a@example.com")})
	_, err := posts.Insert(rowstore.Row{"id": value.NewInt(1), "user_id": value.NewInt(1)})
	require.NoError(t, err, "insert post")

	err = users.Delete(uid)
	require.Error(t, err, "expected referential integrity error deleting a referenced row")
	ee, ok := err.(*engine.Error)
	require.True(t, ok)
	assert.Equal(t, engine.KindReferentialIntegrity, ee.Kind)
}

func TestUpdateToDuplicateUniqueRejectedWithoutMutating(t *testing.T) {
	db := catalog.New()
	users, _ := db.CreateTable("users", usersSchema(), []string{"id"}, [][]string{{"email"}}, nil)
	users.Insert(rowstore.Row{"id": value.NewInt(1), "email": value.NewText("a@example.com")})
	id2, _ := users.Insert(rowstore.Row{"id": value.NewInt(2), "email": value.NewText("b@example.com")})

	err := users.Update(id2, rowstore.Row{"email": value.NewText("a@example.com")})
	assert.Error(t, err, "expected duplicate unique key error on update")

	row, _ := users.Get(id2)
	assert.Equal(t, "b@example.com", row["email"].S, "a rejected update must not mutate the row")
}

func TestCreateIndexThenLookupBySecondaryIndex(t *testing.T) {
	db := catalog.New()
	users, _ := db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	users.Insert(rowstore.Row{"id": value.NewInt(1), "email": value.NewText("a@example.com")})
	users.Insert(rowstore.Row{"id": value.NewInt(2), "email": value.NewText("b@example.com")})

	require.NoError(t, users.CreateIndex("email"))
	ids, ok := users.LookupBySecondaryIndex("email", value.NewText("b@example.com"))
	require.True(t, ok)
	assert.Len(t, ids, 1)
}

func TestSecondaryIndexNeverAutoVivifiesOnLookup(t *testing.T) {
	db := catalog.New()
	users, _ := db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	assert.False(t, users.HasSecondaryIndex("email"), "a column must not gain an index merely by being probed")

	_, ok := users.LookupBySecondaryIndex("email", value.NewText("nobody@example.com"))
	assert.False(t, ok, "lookup against an unindexed column must report ok=false, not silently create an index")
	assert.False(t, users.HasSecondaryIndex("email"), "a failed lookup must not have created a ghost index")
}

func TestInsertMissingColumnRejected(t *testing.T) {
	db := catalog.New()
	users, _ := db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	_, err := users.Insert(rowstore.Row{"id": value.NewInt(1)})
	require.Error(t, err, "expected missing-column error")
	ee, ok := err.(*engine.Error)
	require.True(t, ok)
	assert.Equal(t, engine.KindTypeMismatch, ee.Kind)
}

func TestDropTableRejectedWhenReferenced(t *testing.T) {
	db := catalog.New()
	db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	postsSchema := engine.NewSchema([]engine.Column{
		{Name: "id", Type: value.Integer},
		{Name: "user_id", Type: value.Integer},
	})
	db.CreateTable("posts", postsSchema, []string{"id"},
		nil, []engine.ForeignKey{{Column: "user_id", RefTable: "users", RefColumn: "id"}})

	err := db.DropTable("users")
	assert.Error(t, err, "expected drop to be rejected while posts still references users")
}

func TestCreateTableDuplicateNameRejected(t *testing.T) {
	db := catalog.New()
	db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	_, err := db.CreateTable("users", usersSchema(), []string{"id"}, nil, nil)
	assert.Error(t, err, "expected an error creating a table name that already exists")
}
