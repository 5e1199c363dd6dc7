package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTagsOrdersAndDedupes(t *testing.T) {
	tags := NewTags("realm", "r", "client_id", "c", "realm", "r2", "dangling")
	assert.Equal(t, []string{"client_id", "dangling", "realm"}, tags.Keys())
	assert.Equal(t, []string{"c", "", "r2"}, tags.Values())
	assert.Equal(t, map[string]string{"client_id": "c", "dangling": "", "realm": "r2"}, tags.Map())
}

func TestIdentityEquality(t *testing.T) {
	a := Identity{Name: "m", Tags: NewTags("realm", "A", "client_id", "x")}
	b := Identity{Name: "m", Tags: TagsFromMap(map[string]string{"client_id": "x", "realm": "A"})}
	c := Identity{Name: "m", Tags: NewTags("realm", "B", "client_id", "x")}
	d := Identity{Name: "n", Tags: a.Tags}

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Key(), c.Key())
	assert.False(t, a.Equal(d))
	assert.Equal(t, `m{client_id="x",realm="A"}`, a.String())
}

func TestIdentityKeyIsUnambiguous(t *testing.T) {
	a := Identity{Name: "m", Tags: NewTags("a", "1,b=2")}
	b := Identity{Name: "m", Tags: NewTags("a", "1", "b", "2")}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestTagsWithDoesNotMutate(t *testing.T) {
	base := NewTags("realm", "r")
	extended := base.With("error", "boom")
	assert.Equal(t, []string{"realm"}, base.Keys())
	assert.Equal(t, []string{"error", "realm"}, extended.Keys())
}
