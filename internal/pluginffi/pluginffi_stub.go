// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

//go:build !unix

package pluginffi

import (
	"fmt"

	densky "github.com/densky-framework/densky"
)

// Host is a non-functional stand-in on platforms without dlopen support.
type Host struct{}

// Load always fails on non-unix platforms: densky cloud plugins are POSIX shared
// libraries loaded via dlopen, which has no equivalent wired up here.
func Load(path string) (*Host, error) {
	return nil, fmt.Errorf("%w: plugin loading is unsupported on this platform", densky.ErrPluginLoad)
}

func (h *Host) Setup() (densky.Setup, error)    { return densky.Setup{}, errUnsupported() }
func (h *Host) PostSetup() error                { return errUnsupported() }
func (h *Host) DebugContext()                   {}
func (h *Host) FileResolve(densky.CloudFile) (densky.Resolution, error) {
	return densky.Resolution{}, errUnsupported()
}
func (h *Host) BeforeManifest() (densky.ManifestUpdate, error) {
	return densky.ManifestUpdate{}, errUnsupported()
}
func (h *Host) Manifest(densky.Leaf, string, string, string) (densky.ManifestUpdate, error) {
	return densky.ManifestUpdate{}, errUnsupported()
}
func (h *Host) Close() error { return nil }

func errUnsupported() error {
	return fmt.Errorf("%w: plugin loading is unsupported on this platform", densky.ErrPluginLoad)
}
