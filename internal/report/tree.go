package report

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Tree is an ordered mapping whose values are either nested *Tree or leaf values
// (string, float64, int, bool or nil). Keys keep their first insertion position.
type Tree struct {
	keys   []string
	values map[string]any
}

func NewTree() *Tree {
	return &Tree{values: make(map[string]any)}
}

func (t *Tree) Set(key string, v any) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

func (t *Tree) Get(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

func (t *Tree) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

func (t *Tree) Delete(key string) {
	if _, ok := t.values[key]; !ok {
		return
	}
	delete(t.values, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (t *Tree) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Tree) Len() int { return len(t.keys) }

// Subtree returns the nested tree under key, creating it when absent. A leaf
// stored under key is replaced.
func (t *Tree) Subtree(key string) *Tree {
	if v, ok := t.values[key]; ok {
		if sub, ok := v.(*Tree); ok {
			return sub
		}
	}
	sub := NewTree()
	t.Set(key, sub)
	return sub
}

// subtreeAt descends along path, creating nested trees on demand.
func (t *Tree) subtreeAt(path []string) *Tree {
	cur := t
	for _, key := range path {
		cur = cur.Subtree(key)
	}
	return cur
}

// Lookup walks path and returns the value found there.
func (t *Tree) Lookup(path ...string) (any, bool) {
	cur := t
	for i, key := range path {
		v, ok := cur.values[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		sub, ok := v.(*Tree)
		if !ok {
			return nil, false
		}
		cur = sub
	}
	return cur, true
}

// Number returns the numeric leaf at path.
func (t *Tree) Number(path ...string) (float64, bool) {
	v, ok := t.Lookup(path...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// InsertPath stores value at path, creating intermediate nodes on demand.
func (t *Tree) InsertPath(path []string, value any) {
	if len(path) == 0 {
		return
	}
	t.subtreeAt(path[:len(path)-1]).Set(path[len(path)-1], value)
}

// InsertDotted is InsertPath for a dotted path string.
func (t *Tree) InsertDotted(path string, value any) {
	t.InsertPath(strings.Split(path, "."), value)
}

// Map converts the tree to plain nested maps.
func (t *Tree) Map() map[string]any {
	out := make(map[string]any, len(t.keys))
	for _, k := range t.keys {
		if sub, ok := t.values[k].(*Tree); ok {
			out[k] = sub.Map()
		} else {
			out[k] = t.values[k]
		}
	}
	return out
}

// MarshalJSON emits keys in insertion order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(t.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TreeFromMap builds a tree from a decoded JSON object. Keys are sorted since
// map iteration order is not stable.
func TreeFromMap(m map[string]any) *Tree {
	t := NewTree()
	for _, k := range sortedKeys(m) {
		if sub, ok := m[k].(map[string]any); ok {
			t.Set(k, TreeFromMap(sub))
		} else {
			t.Set(k, m[k])
		}
	}
	return t
}
