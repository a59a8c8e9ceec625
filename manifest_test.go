// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestUpdateMergeImportsConcatenate(t *testing.T) {
	u := NewManifestUpdate()
	u.Imports["react"] = "{ useState }"

	other := NewManifestUpdate()
	other.Imports["react"] = ", { useEffect }"

	require.NoError(t, u.Merge(other))
	assert.Equal(t, "{ useState }, { useEffect }", u.Imports["react"])
}

func TestManifestUpdateMergeArgumentConflict(t *testing.T) {
	u := NewManifestUpdate()
	u.Arguments["ctx"] = "Context"

	other := NewManifestUpdate()
	other.Arguments["ctx"] = "OtherContext"

	err := u.Merge(other)
	require.Error(t, err)
	var conflict *ArgumentConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "ctx", conflict.Name)
}

func TestManifestUpdateMergeArgumentAgreeingIsFine(t *testing.T) {
	u := NewManifestUpdate()
	u.Arguments["ctx"] = "Context"

	other := NewManifestUpdate()
	other.Arguments["ctx"] = "Context"

	require.NoError(t, u.Merge(other))
	assert.Equal(t, "Context", u.Arguments["ctx"])
}

func TestManifestUpdateMergeContentAppends(t *testing.T) {
	u := NewManifestUpdate()
	u.Content = "a;"
	other := NewManifestUpdate()
	other.Content = "b;"

	require.NoError(t, u.Merge(other))
	assert.Equal(t, "a;b;", u.Content)
}

// fakeManifestHost is a minimal PluginHost for exercising ManifestAssembler without cgo.
type fakeManifestHost struct{}

func (fakeManifestHost) Setup() (Setup, error)                          { return Setup{}, nil }
func (fakeManifestHost) PostSetup() error                               { return nil }
func (fakeManifestHost) FileResolve(file CloudFile) (Resolution, error) { return Pass(), nil }
func (fakeManifestHost) DebugContext()                                  {}
func (fakeManifestHost) Close() error                                    { return nil }

func (fakeManifestHost) BeforeManifest() (ManifestUpdate, error) {
	u := NewManifestUpdate()
	u.Content = "BEFORE;"
	return u, nil
}

func (fakeManifestHost) Manifest(leaf Leaf, staticChildrenSrc, childrenSrc, dynamicChildSrc string) (ManifestUpdate, error) {
	u := NewManifestUpdate()
	u.Imports["lib"] = "X"
	u.Arguments["ctx"] = "Context"
	u.Content = fmt.Sprintf("NODE(%s)", leaf.Pathname)
	return u, nil
}

// TestManifestAssemblerStaticOrder exercises spec §4.6's deterministic static-sorted
// emission order and the bottom-up accumulation of imports/arguments/content.
func TestManifestAssemblerStaticOrder(t *testing.T) {
	store := NewNodeStore()

	leafB := makeLeaf(store, "b")
	_, err := store.Insert(store.RootID(), leafB, Pass())
	require.NoError(t, err)

	leafA := makeLeaf(store, "a")
	_, err = store.Insert(store.RootID(), leafA, Pass())
	require.NoError(t, err)

	assembler := NewManifestAssembler(store, fakeManifestHost{})
	update, err := assembler.Assemble()
	require.NoError(t, err)

	assert.Equal(t, "BEFORE;NODE(a)NODE(b)NODE()", update.Content)
	assert.Equal(t, "XXX", update.Imports["lib"])
	assert.Equal(t, "Context", update.Arguments["ctx"])
}
