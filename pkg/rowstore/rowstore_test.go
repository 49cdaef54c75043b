package rowstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstore/relstore/pkg/value"
)

func TestStoreInsertionOrderSurvivesDeletes(t *testing.T) {
	s := New()
	s.Set("a", Row{"n": value.NewInt(1)})
	s.Set("b", Row{"n": value.NewInt(2)})
	s.Set("c", Row{"n": value.NewInt(3)})
	s.Delete("b")

	got := s.All()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestStoreSetOverwriteDoesNotReorder(t *testing.T) {
	s := New()
	s.Set("a", Row{"n": value.NewInt(1)})
	s.Set("b", Row{"n": value.NewInt(2)})
	s.Set("a", Row{"n": value.NewInt(99)})

	got := s.All()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, int64(99), got[0].Row["n"].I, "overwrite should update the row payload")
}

func TestRowCloneIsIndependent(t *testing.T) {
	r := Row{"n": value.NewInt(1)}
	c := r.Clone()
	c["n"] = value.NewInt(2)
	assert.Equal(t, int64(1), r["n"].I, "cloning a row must not let later mutation leak back")
}

func TestStoreLen(t *testing.T) {
	s := New()
	s.Set("a", Row{})
	s.Set("b", Row{})
	s.Delete("a")
	assert.Equal(t, 1, s.Len())
}
