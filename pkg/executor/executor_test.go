package executor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstore/relstore/pkg/catalog"
	"github.com/relstore/relstore/pkg/executor"
	"github.com/relstore/relstore/pkg/parser"
)

// run parses and executes sql against db, failing the test on any error.
func run(t *testing.T, exec *executor.Executor, sql string) *executor.Result {
	t.Helper()
	p, err := parser.New(sql)
	require.NoError(t, err, "tokenize %q", sql)
	stmt, err := p.ParseStatement()
	require.NoError(t, err, "parse %q", sql)
	result, err := exec.Execute(stmt)
	require.NoError(t, err, "execute %q", sql)
	return result
}

// runErr is like run but expects a failure, returning the error.
func runErr(t *testing.T, exec *executor.Executor, sql string) error {
	t.Helper()
	p, err := parser.New(sql)
	require.NoError(t, err, "tokenize %q", sql)
	stmt, err := p.ParseStatement()
	require.NoError(t, err, "parse %q", sql)
	_, err = exec.Execute(stmt)
	require.Error(t, err, "expected an error executing %q", sql)
	return err
}

func newExecutor() *executor.Executor {
	return executor.New(catalog.New())
}

func TestCreateTableStatusMessage(t *testing.T) {
	exec := newExecutor()
	result := run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY, email TEXT UNIQUE)")
	assert.Equal(t, "Table 'users' created successfully.", result.Message)
}

func TestEndToEndInsertSelectUpdateDelete(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY, email TEXT UNIQUE, age INT)")

	insertResult := run(t, exec, "INSERT INTO users (id, email, age) VALUES (1, 'alice@example.com', 30)")
	assert.True(t, strings.HasPrefix(insertResult.Message, "Row inserted with ID "), "unexpected insert message: %q", insertResult.Message)
	run(t, exec, "INSERT INTO users (id, email, age) VALUES (2, 'bob@example.com', 25)")

	selectResult := run(t, exec, "SELECT * FROM users WHERE age > 26")
	require.Len(t, selectResult.Rows, 1)
	assert.Equal(t, "alice@example.com", selectResult.Rows[0]["email"].String())

	updateResult := run(t, exec, "UPDATE users SET age = 31 WHERE id = 1")
	assert.Equal(t, "1 row(s) updated.", updateResult.Message)

	deleteResult := run(t, exec, "DELETE FROM users WHERE id = 2")
	assert.Equal(t, "1 row(s) deleted.", deleteResult.Message)

	remaining := run(t, exec, "SELECT * FROM users")
	assert.Len(t, remaining.Rows, 1)
}

func TestDuplicatePrimaryKeyErrorFragment(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY)")
	run(t, exec, "INSERT INTO users (id) VALUES (1)")
	err := runErr(t, exec, "INSERT INTO users (id) VALUES (1)")
	assert.Contains(t, err.Error(), "Duplicate primary key")
}

func TestDuplicateUniqueErrorFragment(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY, email TEXT UNIQUE)")
	run(t, exec, "INSERT INTO users (id, email) VALUES (1, 'a@example.com')")
	err := runErr(t, exec, "INSERT INTO users (id, email) VALUES (2, 'a@example.com')")
	assert.Contains(t, err.Error(), "Duplicate unique key")
}

func TestForeignKeyErrorFragment(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY)")
	run(t, exec, "CREATE TABLE posts (id INT PRIMARY KEY, user_id INT, FOREIGN KEY (user_id) REFERENCES users (id))")
	err := runErr(t, exec, "INSERT INTO posts (id, user_id) VALUES (1, 99)")
	assert.Contains(t, err.Error(), "Foreign key constraint failed")
}

func TestCannotDeleteReferencedRowErrorFragment(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY)")
	run(t, exec, "CREATE TABLE posts (id INT PRIMARY KEY, user_id INT, FOREIGN KEY (user_id) REFERENCES users (id))")
	run(t, exec, "INSERT INTO users (id) VALUES (1)")
	run(t, exec, "INSERT INTO posts (id, user_id) VALUES (1, 1)")
	err := runErr(t, exec, "DELETE FROM users WHERE id = 1")
	assert.Contains(t, err.Error(), "Cannot delete row")
}

func TestCannotDropReferencedTableErrorFragment(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY)")
	run(t, exec, "CREATE TABLE posts (id INT PRIMARY KEY, user_id INT, FOREIGN KEY (user_id) REFERENCES users (id))")
	err := runErr(t, exec, "DROP TABLE users")
	assert.Contains(t, err.Error(), "Cannot drop table 'users'")
}

func TestUnknownTableErrorFragment(t *testing.T) {
	exec := newExecutor()
	err := runErr(t, exec, "SELECT * FROM ghosts")
	assert.Contains(t, err.Error(), "Table 'ghosts' does not exist.")
}

func TestAmbiguousColumnAfterJoin(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE a (id INT PRIMARY KEY, name TEXT)")
	run(t, exec, "CREATE TABLE b (id INT PRIMARY KEY, name TEXT, a_id INT)")
	run(t, exec, "INSERT INTO a (id, name) VALUES (1, 'x')")
	run(t, exec, "INSERT INTO b (id, name, a_id) VALUES (1, 'y', 1)")

	err := runErr(t, exec, "SELECT name FROM a JOIN b ON a.id = b.a_id")
	assert.Contains(t, err.Error(), "Ambiguous column 'name'")
}

func TestJoinQualifiedProjection(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE a (id INT PRIMARY KEY, name TEXT)")
	run(t, exec, "CREATE TABLE b (id INT PRIMARY KEY, name TEXT, a_id INT)")
	run(t, exec, "INSERT INTO a (id, name) VALUES (1, 'x')")
	run(t, exec, "INSERT INTO b (id, name, a_id) VALUES (1, 'y', 1)")

	result := run(t, exec, "SELECT a.name, b.name FROM a JOIN b ON a.id = b.a_id")
	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, "x", row["a.name"].String())
	assert.Equal(t, "y", row["b.name"].String())
}

func TestOrderByDescending(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY, age INT)")
	run(t, exec, "INSERT INTO users (id, age) VALUES (1, 20)")
	run(t, exec, "INSERT INTO users (id, age) VALUES (2, 40)")
	run(t, exec, "INSERT INTO users (id, age) VALUES (3, 30)")

	result := run(t, exec, "SELECT id, age FROM users ORDER BY age DESC")
	got := []int64{result.Rows[0]["id"].I, result.Rows[1]["id"].I, result.Rows[2]["id"].I}
	assert.Equal(t, []int64{2, 3, 1}, got)
}

func TestLiteralCoercionToColumnType(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE measurements (id INT PRIMARY KEY, reading FLOAT)")
	// "5" is lexed as a bare int literal but must coerce to FLOAT for storage.
	run(t, exec, "INSERT INTO measurements (id, reading) VALUES (1, 5)")
	result := run(t, exec, "SELECT reading FROM measurements WHERE id = 1")
	assert.Equal(t, float64(5), result.Rows[0]["reading"].F, "expected reading coerced to float 5")
}

func TestExplainReportsIndexScanForEquality(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY, email TEXT)")
	result := run(t, exec, "EXPLAIN SELECT * FROM users WHERE id = 1")
	require.NotNil(t, result.Plan, "expected a plan for EXPLAIN")
	assert.Contains(t, result.Plan.String(), "Index Scan", "expected an Index Scan node for an equality on an indexed primary key")
}

func TestExplainReportsSeqScanForNonIndexedColumn(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY, age INT)")
	result := run(t, exec, "EXPLAIN SELECT * FROM users WHERE age > 10")
	assert.Contains(t, result.Plan.String(), "Seq Scan", "expected a Seq Scan node for a non-indexed comparison")
}

func TestInsertColumnCountMismatch(t *testing.T) {
	exec := newExecutor()
	run(t, exec, "CREATE TABLE users (id INT PRIMARY KEY, email TEXT)")
	runErr(t, exec, "INSERT INTO users (id, email) VALUES (1)")
}
