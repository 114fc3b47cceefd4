package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordID(t *testing.T) {
	assert.Equal(t, "abc", Record{FieldID: "abc"}.ID())
	assert.Equal(t, "", Record{}.ID())
	assert.Equal(t, "", Record{FieldID: 42.0}.ID())
	assert.Equal(t, "", Record(nil).ID())
}

func TestRecordCloneIsDeep(t *testing.T) {
	orig := Record{
		"name":   "Radio Pichincha",
		"themes": []any{"health", "trade"},
		"tags":   []string{"a"},
		"geo":    map[string]any{"province": "Pichincha"},
	}
	cp := orig.Clone()

	cp["themes"].([]any)[0] = "changed"
	cp["tags"].([]string)[0] = "changed"
	cp["geo"].(map[string]any)["province"] = "Guayas"
	cp["name"] = "other"

	assert.Equal(t, "health", orig["themes"].([]any)[0])
	assert.Equal(t, "a", orig["tags"].([]string)[0])
	assert.Equal(t, "Pichincha", orig["geo"].(map[string]any)["province"])
	assert.Equal(t, "Radio Pichincha", orig["name"])
}

func TestRecordGet(t *testing.T) {
	r := Record{"a": nil, "b": ""}
	_, ok := r.Get("a")
	assert.False(t, ok, "nil values are absent")
	_, ok = r.Get("missing")
	assert.False(t, ok)
	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestRecordMerge(t *testing.T) {
	base := Record{"a": 1, "b": 2}
	got := base.Merge(Record{"b": 3, "c": 4})
	assert.Equal(t, Record{"a": 1, "b": 3, "c": 4}, got)
	assert.Equal(t, 2, base["b"], "merge does not modify the receiver")
}
