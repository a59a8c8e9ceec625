// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThornIndexSingleConflict(t *testing.T) {
	idx := NewThornIndex()

	require.NoError(t, idx.InsertSingle("a/b", "middleware", 1))

	err := idx.InsertSingle("a/b", "middleware", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrThornConflict)
}

// TestThornIndexGetAllSingleOrder mirrors original_source's container.rs single_thorn
// test: bindings at increasingly shallow ancestors are returned deepest-first.
func TestThornIndexGetAllSingleOrder(t *testing.T) {
	idx := NewThornIndex()

	require.NoError(t, idx.InsertSingle("a/b/c", "middleware", 1))
	require.NoError(t, idx.InsertSingle("a", "middleware", 3))
	require.NoError(t, idx.InsertSingle("a/b", "middleware", 2))
	require.NoError(t, idx.InsertSingle("a/b", "fallback", 4))

	got := idx.GetAllSingle("a/b/c", "middleware")
	assert.Equal(t, []uint64{1, 2, 3}, got)
}

func TestThornIndexMultiAppendOnly(t *testing.T) {
	idx := NewThornIndex()

	idx.InsertMulti("a/b", "plugin", 1)
	idx.InsertMulti("a/b", "plugin", 2)

	got := idx.GetAllMulti("a/b", "plugin")
	assert.Equal(t, []uint64{1, 2}, got)
}

func TestAncestorChain(t *testing.T) {
	assert.Equal(t, []string{"a/b/c", "a/b", "a", ""}, ancestorChain("a/b/c"))
	assert.Equal(t, []string{""}, ancestorChain(""))
}
