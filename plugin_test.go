// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package densky

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFilter(t *testing.T) {
	s := Setup{HasStarts: true, FileStarts: "page.", HasEnds: true, FileEnds: ".tsx"}
	f := s.Filter()
	assert.Equal(t, []string{"page."}, f.Starts)
	assert.Equal(t, []string{".tsx"}, f.Ends)

	none := Setup{}
	assert.Nil(t, none.Filter().Starts)
	assert.Nil(t, none.Filter().Ends)
}

// fakePluginHost is a minimal PluginHost used to exercise NewFileResolver without cgo.
type fakePluginHost struct {
	setup        Setup
	setupErr     error
	setupCalls   int
	resolveCalls []string
}

func (h *fakePluginHost) Setup() (Setup, error) { h.setupCalls++; return h.setup, h.setupErr }
func (h *fakePluginHost) PostSetup() error      { return nil }
func (h *fakePluginHost) FileResolve(file CloudFile) (Resolution, error) {
	h.resolveCalls = append(h.resolveCalls, file.RelativePath)
	if file.RelativePath == "_index.tsx" {
		return Index(), nil
	}
	return Pass(), nil
}
func (h *fakePluginHost) BeforeManifest() (ManifestUpdate, error) { return NewManifestUpdate(), nil }
func (h *fakePluginHost) Manifest(leaf Leaf, staticChildrenSrc, childrenSrc, dynamicChildSrc string) (ManifestUpdate, error) {
	return NewManifestUpdate(), nil
}
func (h *fakePluginHost) DebugContext() {}
func (h *fakePluginHost) Close() error  { return nil }

func TestNewFileResolverFetchesSetupOnce(t *testing.T) {
	host := &fakePluginHost{setup: Setup{HasEnds: true, FileEnds: ".tsx"}}

	resolver, err := NewFileResolver(host)
	require.NoError(t, err)

	assert.Equal(t, FileFilter{Ends: []string{".tsx"}}, resolver.Filter())

	res, err := resolver.FileResolve(CloudFile{RelativePath: "_index.tsx"})
	require.NoError(t, err)
	assert.Equal(t, ResolutionIndex, res.Kind)

	res, err = resolver.FileResolve(CloudFile{RelativePath: "about.tsx"})
	require.NoError(t, err)
	assert.Equal(t, ResolutionPass, res.Kind)

	assert.Equal(t, []string{"_index.tsx", "about.tsx"}, host.resolveCalls)
	assert.Equal(t, 1, host.setupCalls)
}

func TestNewFileResolverPropagatesSetupError(t *testing.T) {
	host := &fakePluginHost{setupErr: assert.AnError}
	_, err := NewFileResolver(host)
	require.Error(t, err)
}
