// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

//go:build unix

package pluginffi

/*
#include <stdint.h>
*/
import "C"

import (
	"encoding/json"
	"fmt"
	"unsafe"

	densky "github.com/densky-framework/densky"
)

// Host loads a densky cloud plugin from a shared library and implements
// densky.PluginHost over its fixed ABI symbol table (spec §4.5/§6).
type Host struct {
	lib *Library

	setupFn          unsafe.Pointer
	contextFn        unsafe.Pointer // optional
	debugContextFn   unsafe.Pointer // optional
	postSetupFn      unsafe.Pointer // optional
	fileResolveFn    unsafe.Pointer
	beforeManifestFn unsafe.Pointer
	manifestFn       unsafe.Pointer

	ctx unsafe.Pointer
}

// Load opens the shared library at path and binds its required entry points. Missing
// required symbols are reported as errors wrapping densky.ErrPluginLoad.
func Load(path string) (*Host, error) {
	lib, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", densky.ErrPluginLoad, err)
	}

	h := &Host{lib: lib}

	required := map[string]*unsafe.Pointer{
		"cloud_setup":           &h.setupFn,
		"cloud_file_resolve":    &h.fileResolveFn,
		"cloud_before_manifest": &h.beforeManifestFn,
		"cloud_manifest":        &h.manifestFn,
	}
	for name, slot := range required {
		sym, err := lib.Symbol(name, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", densky.ErrPluginLoad, err)
		}
		*slot = sym
	}

	optional := map[string]*unsafe.Pointer{
		"cloud_context":       &h.contextFn,
		"cloud_debug_context": &h.debugContextFn,
		"cloud_post_setup":    &h.postSetupFn,
	}
	for name, slot := range optional {
		sym, _ := lib.Symbol(name, false)
		*slot = sym
	}

	if h.contextFn != nil {
		h.ctx = C.densky_call_context(h.contextFn)
	}

	return h, nil
}

func (h *Host) Setup() (densky.Setup, error) {
	c := C.densky_call_setup(h.setupFn)
	if c.ok == 0 {
		return densky.Setup{}, &densky.PluginCallError{Plugin: h.lib.Path(), Symbol: "cloud_setup", Err: fmt.Errorf("%s", goStr(c.error))}
	}
	return densky.Setup{
		Name:         goStr(c.name),
		Version:      goStr(c.version),
		SourceFolder: goStr(c.source_folder),
		FileStarts:   goStr(c.file_starts),
		HasStarts:    c.has_file_starts != 0,
		FileEnds:     goStr(c.file_ends),
		HasEnds:      c.has_file_ends != 0,
		FileStrategy: densky.FileStrategy(c.file_strategy),
	}, nil
}

func (h *Host) PostSetup() error {
	if h.postSetupFn == nil {
		return nil
	}
	C.densky_call_post_setup(h.postSetupFn, h.ctx)
	return nil
}

func (h *Host) DebugContext() {
	if h.debugContextFn == nil {
		return
	}
	C.densky_call_debug_context(h.debugContextFn, h.ctx)
}

func (h *Host) FileResolve(file densky.CloudFile) (densky.Resolution, error) {
	cFile := C.CCloudFile{
		full_path:     fatStr(file.FullPath),
		relative_path: fatStr(file.RelativePath),
		output_path:   fatStr(file.OutputPath),
	}
	c := C.densky_call_file_resolve(h.fileResolveFn, cFile, h.ctx)
	if c.ok == 0 {
		return densky.Resolution{}, &densky.PluginCallError{Plugin: h.lib.Path(), Symbol: "cloud_file_resolve", Err: fmt.Errorf("%s", goStr(c.error))}
	}
	return densky.Resolution{
		Kind:   densky.ResolutionKind(c.kind),
		Prefix: goStr(c.prefix),
		Var:    goStr(c._var),
		Suffix: goStr(c.suffix),
		Name:   goStr(c.name),
	}, nil
}

func (h *Host) BeforeManifest() (densky.ManifestUpdate, error) {
	c := C.densky_call_before_manifest(h.beforeManifestFn)
	return decodeManifestUpdate(h, "cloud_before_manifest", c)
}

func (h *Host) Manifest(leaf densky.Leaf, staticChildrenSrc, childrenSrc, dynamicChildSrc string) (densky.ManifestUpdate, error) {
	leafJSON, err := json.Marshal(leaf)
	if err != nil {
		return densky.ManifestUpdate{}, fmt.Errorf("%w: encoding leaf for cloud_manifest: %v", densky.ErrPluginCall, err)
	}
	c := C.densky_call_manifest(h.manifestFn, fatStr(string(leafJSON)), fatStr(staticChildrenSrc), fatStr(childrenSrc), fatStr(dynamicChildSrc))
	return decodeManifestUpdate(h, "cloud_manifest", c)
}

func decodeManifestUpdate(h *Host, symbol string, c C.CManifestUpdate) (densky.ManifestUpdate, error) {
	if c.ok == 0 {
		return densky.ManifestUpdate{}, &densky.PluginCallError{Plugin: h.lib.Path(), Symbol: symbol, Err: fmt.Errorf("%s", goStr(c.error))}
	}

	update := densky.NewManifestUpdate()
	update.Content = goStr(c.content)

	if raw := goStr(c.imports_json); raw != "" {
		if err := json.Unmarshal([]byte(raw), &update.Imports); err != nil {
			return densky.ManifestUpdate{}, fmt.Errorf("%w: decoding %s imports: %v", densky.ErrPluginCall, symbol, err)
		}
	}
	if raw := goStr(c.arguments_json); raw != "" {
		if err := json.Unmarshal([]byte(raw), &update.Arguments); err != nil {
			return densky.ManifestUpdate{}, fmt.Errorf("%w: decoding %s arguments: %v", densky.ErrPluginCall, symbol, err)
		}
	}

	return update, nil
}

// Close releases the underlying shared library.
func (h *Host) Close() error {
	return h.lib.Close()
}
