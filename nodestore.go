// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// storeSeed is a fixed seed mixed into every NodeStore.Hash so the hash is reproducible
// across runs and across processes.
var storeSeed = [8]byte{'d', 'e', 'n', 's', 'k', 'y', 0, 1}

// globalNodeCounter issues node ids across every NodeStore in a process, per design
// note "Global id counter" in spec §9: ids are unique across all NodeStore instances
// in a run, which simplifies cross-store debugging.
var globalNodeCounter atomic.Uint64

func nextNodeID() uint64 {
	return globalNodeCounter.Add(1)
}

// entry is one node's independent reader/writer lock plus its payload.
type entry struct {
	mu   sync.RWMutex
	node *TreeNode
}

// NodeStore is the owning, content-addressed container of tree nodes. Every node lives
// behind its own RWMutex so many concurrent readers, or one writer, may hold a node at a
// time; the store itself additionally owns the ThornIndex and the root node's id.
type NodeStore struct {
	mu     sync.Mutex // guards the entries map itself, not individual nodes
	nodes  map[uint64]*entry
	thorns *ThornIndex
	rootID uint64
}

// NewNodeStore creates an empty store together with a fresh root node whose pathname is
// "" and is_root is true, per Strategy step 1.
func NewNodeStore() *NodeStore {
	s := &NodeStore{
		nodes:  make(map[uint64]*entry),
		thorns: NewThornIndex(),
	}
	root := &TreeNode{IsRoot: true}
	s.rootID = s.Add(root)
	return s
}

// RootID returns the id of the store's root node.
func (s *NodeStore) RootID() uint64 {
	return s.rootID
}

// Thorns returns the store's ThornIndex.
func (s *NodeStore) Thorns() *ThornIndex {
	return s.thorns
}

// Add assigns a fresh id to node, inserts it, and returns the id. It panics if the
// global counter ever produces a collision, which would violate invariant 5 (node ids
// are unique within a NodeStore) and signals a fatal bug in id issuance rather than a
// recoverable error.
func (s *NodeStore) Add(node *TreeNode) uint64 {
	id := nextNodeID()
	node.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[id]; exists {
		panic(fmt.Sprintf("densky: duplicate node id %d", id))
	}
	s.nodes[id] = &entry{node: node}
	return id
}

// Get returns the node for id and whether it was found, without acquiring any lock on
// the node itself. Callers that need a consistency guarantee should use Reader/Writer.
func (s *NodeStore) Get(id uint64) (*TreeNode, bool) {
	s.mu.Lock()
	e, ok := s.nodes[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Reader acquires a read guard on the node for id. ok is false if id is not present.
func (s *NodeStore) Reader(id uint64) (guard *NodeGuard, ok bool) {
	s.mu.Lock()
	e, found := s.nodes[id]
	s.mu.Unlock()
	if !found {
		return nil, false
	}
	e.mu.RLock()
	return &NodeGuard{entry: e, node: e.node, write: false}, true
}

// Writer acquires a write guard on the node for id. ok is false if id is not present,
// or if any guard on that node is already outstanding, per spec §4.2: "a writer call
// fails (returns empty) if any guard on that node is outstanding." Failing fast rather
// than blocking is what makes §5's reader-then-writer re-parenting discipline
// detectable instead of a silent self-deadlock.
func (s *NodeStore) Writer(id uint64) (guard *NodeGuard, ok bool) {
	s.mu.Lock()
	e, found := s.nodes[id]
	s.mu.Unlock()
	if !found {
		return nil, false
	}
	if !e.mu.TryLock() {
		return nil, false
	}
	return &NodeGuard{entry: e, node: e.node, write: true}, true
}

// Remove deletes the node for id unconditionally, per spec §4.2.
func (s *NodeStore) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, id)
}

// Hash returns a stable, seeded hash of a byte-representable value, used to derive
// deterministic keys for re-locating a just-inserted node by identity.
func (s *NodeStore) Hash(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(storeSeed[:])
	h.Write(data)
	return h.Sum64()
}

// NodeGuard is a lock guard over a single node, released by Release.
type NodeGuard struct {
	entry *entry
	node  *TreeNode
	write bool
}

// Node returns the guarded node.
func (g *NodeGuard) Node() *TreeNode {
	return g.node
}

// Release releases the guard's lock.
func (g *NodeGuard) Release() {
	if g.write {
		g.entry.mu.Unlock()
	} else {
		g.entry.mu.RUnlock()
	}
}
