// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

//go:build unix

// Package pluginffi loads densky cloud plugins: shared libraries implementing the
// fixed plugin ABI described in spec §4.5/§6, resolved by dlopen/dlsym at runtime
// rather than linked statically against any one plugin's object file. The shape of
// this wrapper — an opaque C context pointer threaded through every call, C-string
// argument marshalling, and a runtime.SetFinalizer-based cleanup path — follows
// agentic-research-mache's internal/leyline/client.go, generalized from a fixed
// static link to an arbitrary runtime path.
package pluginffi

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Library is a loaded shared library handle, closed via runtime.SetFinalizer and
// explicit Close.
type Library struct {
	path   string
	handle unsafe.Pointer
}

// Open dlopen's the shared library at path with RTLD_NOW|RTLD_LOCAL.
func Open(path string) (*Library, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	C.dlerror() // clear any pending error
	handle := C.dlopen(cPath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, fmt.Errorf("pluginffi: dlopen %s: %s", path, dlerror())
	}

	lib := &Library{path: path, handle: handle}
	runtime.SetFinalizer(lib, (*Library).Close)
	return lib, nil
}

// Close dlclose's the library. Safe to call multiple times.
func (l *Library) Close() error {
	if l.handle == nil {
		return nil
	}
	if C.dlclose(l.handle) != 0 {
		return fmt.Errorf("pluginffi: dlclose %s: %s", l.path, dlerror())
	}
	l.handle = nil
	runtime.SetFinalizer(l, nil)
	return nil
}

// Path returns the path this library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Symbol resolves a named entry point. required controls whether a missing symbol is
// an error, per spec §4.5's required/optional entry-point table.
func (l *Library) Symbol(name string, required bool) (unsafe.Pointer, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	C.dlerror()
	sym := C.dlsym(l.handle, cName)
	if sym == nil {
		if !required {
			return nil, nil
		}
		return nil, fmt.Errorf("pluginffi: missing required symbol %q in %s: %s", name, l.path, dlerror())
	}
	return sym, nil
}

func dlerror() string {
	msg := C.dlerror()
	if msg == nil {
		return "unknown error"
	}
	return C.GoString(msg)
}
