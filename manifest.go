// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"fmt"
	"sort"
	"strings"
)

// ManifestAssembler drives the post-order tree traversal described by spec §4.6,
// calling a plugin's cloud_manifest for every node and accumulating the merged result.
type ManifestAssembler struct {
	store *NodeStore
	host  PluginHost
}

// NewManifestAssembler builds an assembler over store using host for per-node codegen.
func NewManifestAssembler(store *NodeStore, host PluginHost) *ManifestAssembler {
	return &ManifestAssembler{store: store, host: host}
}

// Assemble runs cloud_before_manifest, then the post-order traversal from the root, and
// returns the fully merged ManifestUpdate.
func (a *ManifestAssembler) Assemble() (ManifestUpdate, error) {
	update, err := a.host.BeforeManifest()
	if err != nil {
		return ManifestUpdate{}, &PluginCallError{Symbol: "cloud_before_manifest", Err: err}
	}

	nodeUpdate, err := a.assembleNode(a.store.RootID())
	if err != nil {
		return ManifestUpdate{}, err
	}
	if err := update.Merge(nodeUpdate); err != nil {
		return ManifestUpdate{}, err
	}

	return update, nil
}

// assembleNode implements spec §4.6 steps 1-4 for a single node, recursing into its
// static and dynamic children first.
func (a *ManifestAssembler) assembleNode(nodeID uint64) (ManifestUpdate, error) {
	guard, ok := a.store.Reader(nodeID)
	if !ok {
		return ManifestUpdate{}, ErrNodeNotFound
	}
	node := guard.Node()
	staticKeys := sortedKeys(node.StaticChildren)
	dynamicKeys := sortedKeys(node.DynamicChildren)
	staticChildren := cloneUint64Map(node.StaticChildren)
	dynamicChildren := cloneUint64Map(node.DynamicChildren)
	dynamicID := node.Dynamic
	dynamicVar := node.DynamicVar
	guard.Release()

	accum := NewManifestUpdate()

	var staticSrc strings.Builder
	for _, key := range staticKeys {
		childUpdate, fragment, err := a.assembleChildFragment(staticChildren[key])
		if err != nil {
			return ManifestUpdate{}, err
		}
		if err := accum.Merge(childUpdate); err != nil {
			return ManifestUpdate{}, err
		}
		fmt.Fprintf(&staticSrc, "%q: () => { %s },", key, fragment)
	}

	var childrenSrc strings.Builder
	childrenSrc.WriteString(staticSrc.String())
	dynamicOnlyKeys := make([]string, 0, len(dynamicKeys))
	for _, key := range dynamicKeys {
		id := dynamicChildren[key]
		if dynamicID != nil && id == *dynamicID {
			continue
		}
		dynamicOnlyKeys = append(dynamicOnlyKeys, key)
	}
	for _, key := range dynamicOnlyKeys {
		childUpdate, fragment, err := a.assembleChildFragment(dynamicChildren[key])
		if err != nil {
			return ManifestUpdate{}, err
		}
		if err := accum.Merge(childUpdate); err != nil {
			return ManifestUpdate{}, err
		}
		fmt.Fprintf(&childrenSrc, "%q: () => { %s },", key, fragment)
	}

	var dynamicChildSrc string
	if dynamicID != nil {
		if err := a.setVarname(*dynamicID, dynamicVar); err != nil {
			return ManifestUpdate{}, err
		}
		childUpdate, fragment, err := a.assembleChildFragment(*dynamicID)
		if err != nil {
			return ManifestUpdate{}, err
		}
		if err := accum.Merge(childUpdate); err != nil {
			return ManifestUpdate{}, err
		}
		dynamicChildSrc = fragment
	}

	leaf, err := a.store.ProjectLeaf(nodeID)
	if err != nil {
		return ManifestUpdate{}, err
	}

	nodeUpdate, err := a.host.Manifest(leaf, staticSrc.String(), childrenSrc.String(), dynamicChildSrc)
	if err != nil {
		return ManifestUpdate{}, &PluginCallError{Symbol: "cloud_manifest", Err: err}
	}
	if err := accum.Merge(nodeUpdate); err != nil {
		return ManifestUpdate{}, err
	}

	return accum, nil
}

// assembleChildFragment recurses into a child and returns both its accumulated
// ManifestUpdate and the node's own emitted content, used as the child's source
// fragment by its parent's static/dynamic child source strings.
func (a *ManifestAssembler) assembleChildFragment(childID uint64) (ManifestUpdate, string, error) {
	update, err := a.assembleNode(childID)
	if err != nil {
		return ManifestUpdate{}, "", err
	}
	return update, update.Content, nil
}

func (a *ManifestAssembler) setVarname(nodeID uint64, varname string) error {
	guard, ok := a.store.Writer(nodeID)
	if !ok {
		return ErrNodeNotFound
	}
	defer guard.Release()
	guard.Node().Varname = varname
	guard.Node().HasVar = true
	return nil
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneUint64Map(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
