package sets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnion_ReturnsOnlyNewMembers(t *testing.T) {
	s := New("a", "b")
	added := s.Union(New("b", "c"))
	assert.Equal(t, 1, added)
	assert.True(t, s.Equal(New("a", "b", "c")))
}

func TestUnionSlice_Idempotent(t *testing.T) {
	s := New[string]()
	assert.Equal(t, 2, s.UnionSlice([]string{"a", "b"}))
	assert.Equal(t, 0, s.UnionSlice([]string{"a", "b"}))
	assert.Equal(t, 2, s.Len())
}

func TestEqual(t *testing.T) {
	assert.True(t, New("x").Equal(New("x")))
	assert.False(t, New("x").Equal(New("x", "y")))
	assert.False(t, New("x", "z").Equal(New("x", "y")))
	assert.True(t, New[string]().Equal(New[string]()))
}

func TestCloneIsIndependent(t *testing.T) {
	s := New("a")
	c := s.Clone()
	c.Add("b")
	assert.False(t, s.Has("b"))
}

func TestDifference(t *testing.T) {
	d := New("a", "b", "c").Difference(New("b"))
	assert.True(t, d.Equal(New("a", "c")))

	assert.Equal(t, 0, New[string]().Difference(New("x")).Len())
	assert.True(t, New("x").Difference(New[string]()).Equal(New("x")))
}

func TestValues(t *testing.T) {
	vals := New("b", "a").Values()
	sort.Strings(vals)
	assert.Equal(t, []string{"a", "b"}, vals)
}
