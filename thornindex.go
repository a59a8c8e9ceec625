// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

// ThornIndex is a two-level map path → {marker-name → node-id}, per spec §3/§4.3.
// SingleThorn bindings are unique per (path, name); MultiThorn bindings append.
type ThornIndex struct {
	single map[string]map[string]uint64
	multi  map[string]map[string][]uint64
}

// NewThornIndex returns an empty ThornIndex.
func NewThornIndex() *ThornIndex {
	return &ThornIndex{
		single: make(map[string]map[string]uint64),
		multi:  make(map[string]map[string][]uint64),
	}
}

// InsertSingle binds name at path to nodeID. It returns a *ThornConflictError if a
// binding for (path, name) already exists, per invariant 4.
func (t *ThornIndex) InsertSingle(path, name string, nodeID uint64) error {
	names, ok := t.single[path]
	if !ok {
		names = make(map[string]uint64)
		t.single[path] = names
	}
	if _, exists := names[name]; exists {
		return &ThornConflictError{Path: path, Name: name}
	}
	names[name] = nodeID
	return nil
}

// InsertMulti appends nodeID to the (path, name) list. Repetition is allowed.
func (t *ThornIndex) InsertMulti(path, name string, nodeID uint64) {
	names, ok := t.multi[path]
	if !ok {
		names = make(map[string][]uint64)
		t.multi[path] = names
	}
	names[name] = append(names[name], nodeID)
}

// GetAllSingle returns every SingleThorn binding for name found along path and its
// ancestors, ordered deepest-first (the query path itself, then each parent in turn).
func (t *ThornIndex) GetAllSingle(path, name string) []uint64 {
	var out []uint64
	for _, p := range ancestorChain(path) {
		if names, ok := t.single[p]; ok {
			if id, ok := names[name]; ok {
				out = append(out, id)
			}
		}
	}
	return out
}

// GetAllMulti returns every MultiThorn binding for name found along path and its
// ancestors, ordered deepest-first, with a node's own multiple bindings preserved in
// insertion order ahead of any ancestor's.
func (t *ThornIndex) GetAllMulti(path, name string) []uint64 {
	var out []uint64
	for _, p := range ancestorChain(path) {
		if names, ok := t.multi[p]; ok {
			out = append(out, names[name]...)
		}
	}
	return out
}

// ancestorChain returns path, then each ancestor directory of path (stripping one
// trailing segment at a time), ending with "". Mirrors original_source's
// PathBuf::pop()-based ancestor walk.
func ancestorChain(path string) []string {
	chain := []string{path}
	for path != "" {
		path = ParentPathname(path)
		chain = append(chain, path)
	}
	return chain
}

// allSingleAt returns every SingleThorn name→id binding declared directly at path (not
// its ancestors), used by the ManifestAssembler's Leaf projection.
func (t *ThornIndex) allSingleAt(path string) map[string]uint64 {
	out := make(map[string]uint64)
	for name, id := range t.single[path] {
		out[name] = id
	}
	return out
}
