// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

// Leaf is the projection of a TreeNode used as input to code generation, per spec §4.3
// "Projection to a Leaf record".
type Leaf struct {
	Pathname         string
	RelativePathname string

	// Index is the input path of the node itself, or of its index child, if either is set.
	Index   string
	HasIndex bool

	// SingleThorns maps a marker name to the ordered (deepest-first) list of file paths
	// bound to that name across this node's path and its ancestors.
	SingleThorns map[string][]string

	IsRoot   bool
	IsStatic bool
	Varname  string
	HasVar   bool
}

// ProjectLeaf builds the Leaf record for the node identified by nodeID.
func (s *NodeStore) ProjectLeaf(nodeID uint64) (Leaf, error) {
	guard, ok := s.Reader(nodeID)
	if !ok {
		return Leaf{}, ErrNodeNotFound
	}
	defer guard.Release()
	node := guard.Node()

	leaf := Leaf{
		Pathname:         node.Pathname,
		RelativePathname: node.RelativePathname,
		IsRoot:           node.IsRoot,
		IsStatic:         node.IsStatic,
		Varname:          node.Varname,
		HasVar:           node.HasVar,
	}

	switch {
	case node.HasInput:
		leaf.Index = node.InputPath
		leaf.HasIndex = true
	case node.Index != nil:
		indexGuard, ok := s.Reader(*node.Index)
		if ok {
			defer indexGuard.Release()
			if indexNode := indexGuard.Node(); indexNode.HasInput {
				leaf.Index = indexNode.InputPath
				leaf.HasIndex = true
			}
		}
	}

	leaf.SingleThorns = make(map[string][]string)
	for name, ids := range s.groupThornsByName(nodeID) {
		paths := make([]string, 0, len(ids))
		for _, id := range ids {
			if g, ok := s.Reader(id); ok {
				if n := g.Node(); n.HasInput {
					paths = append(paths, n.InputPath)
				}
				g.Release()
			}
		}
		leaf.SingleThorns[name] = paths
	}

	return leaf, nil
}

// groupThornsByName collects every SingleThorn binding visible from pathname, grouped by
// marker name, ordered deepest-first within each name's slice.
func (s *NodeStore) groupThornsByName(nodeID uint64) map[string][]uint64 {
	guard, ok := s.Reader(nodeID)
	if !ok {
		return nil
	}
	pathname := guard.Node().Pathname
	guard.Release()

	out := make(map[string][]uint64)
	for _, path := range ancestorChain(pathname) {
		for name, id := range s.thorns.allSingleAt(path) {
			out[name] = append(out[name], id)
		}
	}
	return out
}
